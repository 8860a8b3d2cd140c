package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/share"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type clientShareService struct {
	server  adapter.ServerAdapter
	engine  *share.Engine
	baseURL string

	logger *logger.Logger
}

// NewClientShareService returns a share service that composes links under
// baseURL. Link passwords are stretched with kdf.
func NewClientShareService(server adapter.ServerAdapter, kdf crypto.Deriver, baseURL string, logger *logger.Logger) ClientShareService {
	return &clientShareService{
		server:  server,
		engine:  share.NewEngine(kdf),
		baseURL: baseURL,
		logger:  logger,
	}
}

func (s *clientShareService) Share(ctx context.Context, content []byte, password string, ttl time.Duration, maxViews int) (models.ShareLink, error) {
	draft, err := s.engine.Create(content, password)
	if err != nil {
		return models.ShareLink{}, err
	}

	created, err := s.server.CreateShare(ctx, models.CreateShareRequest{
		Ciphertext: draft.Ciphertext,
		Nonce:      draft.Nonce,
		TTLSeconds: int64(ttl / time.Second),
		MaxViews:   maxViews,
	})
	if err != nil {
		return models.ShareLink{}, fmt.Errorf("create share: %w", err)
	}

	url, err := share.ComposeURL(s.baseURL, created.ShareID, draft.Fragment)
	if err != nil {
		return models.ShareLink{}, err
	}

	s.logger.Info().
		Str("share_id", created.ShareID).
		Time("expires_at", created.ExpiresAt).
		Bool("password", password != "").
		Msg("share created")
	return models.ShareLink{URL: url, ExpiresAt: created.ExpiresAt}, nil
}

func (s *clientShareService) Resolve(ctx context.Context, rawURL, password string) ([]byte, error) {
	id, fragment, err := share.ParseURL(rawURL)
	if err != nil {
		return nil, ErrShareUnavailable
	}

	// the key is unlocked before the fetch; a fetch spends a view
	shareKey, err := s.engine.UnlockFragment(fragment, password)
	if err != nil {
		if errors.Is(err, share.ErrPasswordRequired) {
			return nil, err
		}
		return nil, ErrShareUnavailable
	}
	defer crypto.Wipe(shareKey)

	rec, err := s.server.OpenShare(ctx, id)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			return nil, ErrShareUnavailable
		}
		return nil, fmt.Errorf("open share: %w", err)
	}

	content, err := share.OpenWithKey(shareKey, rec.Ciphertext, rec.Nonce)
	if err != nil {
		s.logger.Warn().Str("share_id", id).Msg("share payload did not decrypt")
		return nil, ErrShareUnavailable
	}
	return content, nil
}
