// Package auth guards the login endpoint.
//
// A Throttle tracks failed attempts per client key in a sliding window and
// locks the key out once MaxAttempts is reached. Service combines it with a
// constant-time password check and issues HS256 bearer tokens through Issuer.
package auth
