package configstore

// DocumentSchema is the JSON Schema the managed agent configuration is
// checked against. Only the top-level sections are constrained; anything
// else is passed through.
const DocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "agents": {
      "type": "object",
      "properties": {
        "defaults": {
          "type": "object",
          "properties": {
            "workspace": { "type": "string" },
            "model": { "type": "string", "minLength": 1 },
            "maxTokens": { "type": "integer", "minimum": 1 },
            "temperature": { "type": "number", "minimum": 0, "maximum": 2 },
            "maxToolIterations": { "type": "integer", "minimum": 1 }
          }
        }
      }
    },
    "providers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "apiKey": { "type": "string" },
          "apiBase": { "type": ["string", "null"] }
        }
      }
    },
    "channels": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "enabled": { "type": "boolean" },
          "allowFrom": { "type": "array", "items": { "type": "string" } }
        }
      }
    },
    "gateway": {
      "type": "object",
      "properties": {
        "host": { "type": "string" },
        "port": { "type": "integer", "minimum": 1, "maximum": 65535 }
      }
    },
    "tools": { "type": "object" }
  }
}`
