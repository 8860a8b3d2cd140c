package store

import "github.com/MKhiriev/go-secret-keeper/internal/logger"

// Repositories bundles every repository over one database.
type Repositories struct {
	Users   UserRepository
	Vaults  VaultRepository
	Secrets SecretRepository
	Shares  ShareRepository
}

// NewRepositories builds all repositories over db.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(db, log),
		Vaults:  NewVaultRepository(db, log),
		Secrets: NewSecretRepository(db, log),
		Shares:  NewShareRepository(db, log),
	}
}
