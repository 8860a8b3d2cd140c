package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type httpServerAdapter struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises the base URL from adapterCfg.HTTPAddress and
// configures the request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	a := &httpServerAdapter{client: client, logger: logger}
	client.OnAfterResponse(a.logResponse)

	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [ServerAdapter]. POST /api/auth/register.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.User, error) {
	var registered models.User

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		SetResult(&registered).
		Post("/api/auth/register")
	if err != nil {
		return models.User{}, fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	if err = h.storeToken(resp); err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	return registered, nil
}

// Params implements [ServerAdapter]. POST /api/auth/params.
func (h *httpServerAdapter) Params(ctx context.Context, login string) (models.KDFParams, error) {
	var params models.KDFParams

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ParamsRequest{Login: login}).
		SetResult(&params).
		Post("/api/auth/params")
	if err != nil {
		return models.KDFParams{}, fmt.Errorf("params request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.KDFParams{}, err
	}

	return params, nil
}

// Login implements [ServerAdapter]. POST /api/auth/login.
func (h *httpServerAdapter) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	var foundUser models.User

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&foundUser).
		Post("/api/auth/login")
	if err != nil {
		return models.User{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	if err = h.storeToken(resp); err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	return foundUser, nil
}

// UpdateCredentials implements [ServerAdapter]. PUT /api/auth/credentials.
func (h *httpServerAdapter) UpdateCredentials(ctx context.Context, req models.ChangeCredentialsRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Put("/api/auth/credentials")
	if err != nil {
		return fmt.Errorf("update credentials request: %w", err)
	}
	return mapHTTPError(resp)
}

// FindMember implements [ServerAdapter]. GET /api/users/{login}.
func (h *httpServerAdapter) FindMember(ctx context.Context, login string) (models.Member, error) {
	var member models.Member

	resp, err := h.authedRequest(ctx).
		SetPathParam("login", login).
		SetResult(&member).
		Get("/api/users/{login}")
	if err != nil {
		return models.Member{}, fmt.Errorf("find member request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Member{}, err
	}
	return member, nil
}

// CreateVault implements [ServerAdapter]. POST /api/vaults.
func (h *httpServerAdapter) CreateVault(ctx context.Context, req models.CreateVaultRequest) (models.Vault, error) {
	var vault models.Vault

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&vault).
		Post("/api/vaults")
	if err != nil {
		return models.Vault{}, fmt.Errorf("create vault request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Vault{}, err
	}
	return vault, nil
}

// ListVaults implements [ServerAdapter]. GET /api/vaults.
func (h *httpServerAdapter) ListVaults(ctx context.Context) ([]models.Vault, error) {
	var vaults []models.Vault

	resp, err := h.authedRequest(ctx).
		SetResult(&vaults).
		Get("/api/vaults")
	if err != nil {
		return nil, fmt.Errorf("list vaults request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return vaults, nil
}

// GetWrappedKey implements [ServerAdapter]. GET /api/vaults/{vaultID}/key.
func (h *httpServerAdapter) GetWrappedKey(ctx context.Context, vaultID string) (models.WrappedVaultKey, error) {
	var key models.WrappedVaultKey

	resp, err := h.authedRequest(ctx).
		SetPathParam("vaultID", vaultID).
		SetResult(&key).
		Get("/api/vaults/{vaultID}/key")
	if err != nil {
		return models.WrappedVaultKey{}, fmt.Errorf("get wrapped key request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WrappedVaultKey{}, err
	}
	return key, nil
}

// ListMembers implements [ServerAdapter]. GET /api/vaults/{vaultID}/members.
func (h *httpServerAdapter) ListMembers(ctx context.Context, vaultID string) ([]models.Member, error) {
	var members []models.Member

	resp, err := h.authedRequest(ctx).
		SetPathParam("vaultID", vaultID).
		SetResult(&members).
		Get("/api/vaults/{vaultID}/members")
	if err != nil {
		return nil, fmt.Errorf("list members request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return members, nil
}

// GrantAccess implements [ServerAdapter]. POST /api/vaults/{vaultID}/members.
func (h *httpServerAdapter) GrantAccess(ctx context.Context, vaultID string, req models.GrantRequest) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("vaultID", vaultID).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/vaults/{vaultID}/members")
	if err != nil {
		return fmt.Errorf("grant access request: %w", err)
	}
	return mapHTTPError(resp)
}

// Rotate implements [ServerAdapter]. POST /api/vaults/{vaultID}/rotate.
func (h *httpServerAdapter) Rotate(ctx context.Context, vaultID string, req models.RotateRequest) (int64, error) {
	var rotated models.RotateResponse

	resp, err := h.authedRequest(ctx).
		SetPathParam("vaultID", vaultID).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&rotated).
		Post("/api/vaults/{vaultID}/rotate")
	if err != nil {
		return 0, fmt.Errorf("rotate request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}
	return rotated.KeyVersion, nil
}

// PutSecret implements [ServerAdapter]. PUT /api/vaults/{vaultID}/secrets.
func (h *httpServerAdapter) PutSecret(ctx context.Context, secret models.EncryptedSecret) (models.EncryptedSecret, error) {
	var saved models.EncryptedSecret

	resp, err := h.authedRequest(ctx).
		SetPathParam("vaultID", secret.VaultID).
		SetHeader("Content-Type", "application/json").
		SetBody(secret).
		SetResult(&saved).
		Put("/api/vaults/{vaultID}/secrets")
	if err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("put secret request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.EncryptedSecret{}, err
	}
	return saved, nil
}

// GetSecret implements [ServerAdapter].
// GET /api/vaults/{vaultID}/secrets/{environment}/{key}.
func (h *httpServerAdapter) GetSecret(ctx context.Context, ref models.SecretRef) (models.EncryptedSecret, error) {
	var secret models.EncryptedSecret

	resp, err := h.authedRequest(ctx).
		SetPathParams(refParams(ref)).
		SetResult(&secret).
		Get("/api/vaults/{vaultID}/secrets/{environment}/{key}")
	if err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("get secret request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.EncryptedSecret{}, err
	}
	return secret, nil
}

// ListSecrets implements [ServerAdapter]. GET /api/vaults/{vaultID}/secrets.
func (h *httpServerAdapter) ListSecrets(ctx context.Context, vaultID, environment string) ([]models.EncryptedSecret, error) {
	var secrets []models.EncryptedSecret

	req := h.authedRequest(ctx).
		SetPathParam("vaultID", vaultID).
		SetResult(&secrets)
	if environment != "" {
		req.SetQueryParam("environment", environment)
	}

	resp, err := req.Get("/api/vaults/{vaultID}/secrets")
	if err != nil {
		return nil, fmt.Errorf("list secrets request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return secrets, nil
}

// DeleteSecret implements [ServerAdapter].
// DELETE /api/vaults/{vaultID}/secrets/{environment}/{key}.
func (h *httpServerAdapter) DeleteSecret(ctx context.Context, ref models.SecretRef) error {
	resp, err := h.authedRequest(ctx).
		SetPathParams(refParams(ref)).
		Delete("/api/vaults/{vaultID}/secrets/{environment}/{key}")
	if err != nil {
		return fmt.Errorf("delete secret request: %w", err)
	}
	return mapHTTPError(resp)
}

// CreateShare implements [ServerAdapter]. POST /api/shares.
func (h *httpServerAdapter) CreateShare(ctx context.Context, req models.CreateShareRequest) (models.CreateShareResponse, error) {
	var created models.CreateShareResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&created).
		Post("/api/shares")
	if err != nil {
		return models.CreateShareResponse{}, fmt.Errorf("create share request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.CreateShareResponse{}, err
	}
	return created, nil
}

// OpenShare implements [ServerAdapter]. GET /api/shares/{shareID}.
func (h *httpServerAdapter) OpenShare(ctx context.Context, shareID string) (models.ShareRecord, error) {
	var rec models.ShareRecord

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("shareID", shareID).
		SetResult(&rec).
		Get("/api/shares/{shareID}")
	if err != nil {
		return models.ShareRecord{}, fmt.Errorf("open share request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ShareRecord{}, err
	}
	return rec, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func (h *httpServerAdapter) storeToken(resp *resty.Response) error {
	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("parse bearer token: %w", err)
	}
	h.SetToken(token)
	return nil
}

// logResponse records method, path, status and latency. Bodies are never
// logged.
func (h *httpServerAdapter) logResponse(_ *resty.Client, resp *resty.Response) error {
	h.logger.Debug().
		Str("method", resp.Request.Method).
		Str("url", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("server responded")
	return nil
}

func refParams(ref models.SecretRef) map[string]string {
	return map[string]string{
		"vaultID":     ref.VaultID,
		"environment": ref.Environment,
		"key":         ref.Key,
	}
}
