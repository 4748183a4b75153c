package ports

import "jokesite/src/core/domain"

// PasswordHasher is a one-way adaptive hash with a per-call salt.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// SessionCodec turns a session payload into a tamper-evident cookie value and back.
// Decode never fails loudly: absent, malformed, expired or forged values yield ok=false.
type SessionCodec interface {
	Encode(s domain.Session) (string, error)
	Decode(value string) (s domain.Session, ok bool)
}
