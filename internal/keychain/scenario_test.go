package keychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// register mirrors what a client does on sign-up: fresh salt, derive the
// master key, generate an identity and wrap the private half.
func register(t *testing.T, kdf *crypto.KDF, password string) (salt []byte, id models.IdentityKeyPair, wrapped models.WrappedPrivateKey) {
	t.Helper()

	salt, err := kdf.GenerateSalt()
	require.NoError(t, err)
	master, err := kdf.Derive(password, salt)
	require.NoError(t, err)
	defer crypto.Wipe(master)

	id, err = GenerateIdentity()
	require.NoError(t, err)
	wrapped, err = ProtectPrivateKey(id.PrivateKey[:], master)
	require.NoError(t, err)
	return salt, id, wrapped
}

func TestScenario_RegisterThenUnlock(t *testing.T) {
	kdf := crypto.NewKDF()
	salt, id, wrapped := register(t, kdf, "Tr0ub4dor&3")

	master, err := kdf.Derive("Tr0ub4dor&3", salt)
	require.NoError(t, err)

	priv, err := Unlock(wrapped, master)
	require.NoError(t, err)
	assert.Equal(t, id.PrivateKey[:], priv)
}

func TestScenario_VaultSharing(t *testing.T) {
	alice, err := GenerateIdentity()
	require.NoError(t, err)
	bob, err := GenerateIdentity()
	require.NoError(t, err)

	vaultKey, err := CreateVaultKey()
	require.NoError(t, err)

	_, err = GrantAccess(vaultKey, alice.PublicKey[:])
	require.NoError(t, err)
	forBob, err := GrantAccess(vaultKey, bob.PublicKey[:])
	require.NoError(t, err)

	ref := models.SecretRef{VaultID: "team", Environment: "staging", Key: "STRIPE_KEY"}
	secret, err := EncryptValue(ref, []byte("sk_test_123"), vaultKey)
	require.NoError(t, err)

	bobKey, err := UnwrapVaultKey(forBob, bob.PublicKey[:], bob.PrivateKey[:])
	require.NoError(t, err)

	plain, err := DecryptValue(secret, bobKey)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", string(plain))
}

func TestScenario_WrongPasswordUnlock(t *testing.T) {
	kdf := crypto.NewKDF()
	salt, _, wrapped := register(t, kdf, "Tr0ub4dor&3")

	for _, pw := range []string{"tr0ub4dor&3", "Tr0ub4dor&4", ""} {
		master, err := kdf.Derive(pw, salt)
		require.NoError(t, err)

		priv, err := Unlock(wrapped, master)
		assert.ErrorIs(t, err, crypto.ErrAuthenticationFailed, "password %q", pw)
		assert.Nil(t, priv)
	}
}
