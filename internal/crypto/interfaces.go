package crypto

// Deriver turns a password into a key. [*KDF] is the production
// implementation; client services depend on this interface so that tests can
// supply a cheaper profile.
type Deriver interface {
	// GenerateSalt returns a fresh random salt. The salt is not secret.
	GenerateSalt() ([]byte, error)

	// Derive runs the password hash over password and salt. Identical inputs
	// always return identical keys.
	Derive(password string, salt []byte) ([]byte, error)
}

var _ Deriver = (*KDF)(nil)
