package models

// ParamsRequest asks for the KDF parameters of a login.
type ParamsRequest struct {
	Login string `json:"login"`
}

// LoginRequest authenticates with the auth hash derived on the client.
type LoginRequest struct {
	Login    string `json:"login"`
	AuthHash string `json:"auth_hash"`
}

// ChangeCredentialsRequest replaces the password-dependent fields of an
// account. CurrentAuthHash proves knowledge of the old password; the
// identity key pair itself does not change.
type ChangeCredentialsRequest struct {
	CurrentAuthHash   string            `json:"current_auth_hash"`
	AuthHash          string            `json:"auth_hash"`
	EncryptionSalt    []byte            `json:"encryption_salt"`
	WrappedPrivateKey WrappedPrivateKey `json:"wrapped_private_key"`
}
