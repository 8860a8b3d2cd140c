package service

import (
	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/session"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/validators"
)

// Services bundles the server-side services.
type Services struct {
	AuthService    AuthService
	VaultService   VaultService
	ShareService   ShareService
	AppInfoService AppInfoService
}

func NewServices(repos *store.Repositories, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	validator := validators.NewRequestValidator()

	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:    NewAuthService(repos.Users, validator, cfg.App, logger),
		VaultService:   NewVaultService(repos.Vaults, repos.Secrets, validator, logger),
		ShareService:   NewShareService(repos.Shares, validator, cfg.Share, logger),
		AppInfoService: appInfo,
	}, nil
}

// ClientServices bundles the CLI-side services around one session cache.
type ClientServices struct {
	Session *session.Cache

	AuthService  ClientAuthService
	VaultService ClientVaultService
	ShareService ClientShareService
}

func NewClientServices(server adapter.ServerAdapter, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	cache := session.New()
	kdf := crypto.NewKDF()

	return &ClientServices{
		Session:      cache,
		AuthService:  NewClientAuthService(server, kdf, kdf.Profile(), cache, logger),
		VaultService: NewClientVaultService(server, cache, logger),
		ShareService: NewClientShareService(server, kdf, cfg.Share.BaseURL, logger),
	}
}
