package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// Verify never errors on malformed stored hashes; it reports false instead.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) bool
}
