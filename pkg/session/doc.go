// Package session exposes the agent's chat sessions under workspace/sessions
// as renderable message lists. Sessions are read-only here.
package session
