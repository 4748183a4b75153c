// Package security holds the password hasher and the session cookie codec.
package security
