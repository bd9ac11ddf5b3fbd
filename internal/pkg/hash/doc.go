// Package hash hashes and verifies secrets such as passwords.
//
// Store only the hash, then verify user input by comparing the plaintext
// against it.
package hash

// Hash hashes plaintext and verifies plaintext against a stored hash.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
