package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/internal/validators"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type shareService struct {
	shares    store.ShareRepository
	validator validators.Validator
	ids       *utils.UUIDGenerator

	maxTTL   time.Duration
	maxViews int
	now      func() time.Time

	logger *logger.Logger
}

func NewShareService(shares store.ShareRepository, validator validators.Validator, cfg config.Share, logger *logger.Logger) ShareService {
	return &shareService{
		shares:    shares,
		validator: validator,
		ids:       utils.NewUUIDGenerator(),
		maxTTL:    cfg.MaxTTL,
		maxViews:  cfg.MaxViews,
		now:       time.Now,
		logger:    logger,
	}
}

// CreateShare stores an encrypted payload under a fresh random id. The
// server never sees the key: it lives in the link's fragment.
func (s *shareService) CreateShare(ctx context.Context, req models.CreateShareRequest) (models.CreateShareResponse, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		return models.CreateShareResponse{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if (s.maxTTL > 0 && ttl > s.maxTTL) || (s.maxViews > 0 && req.MaxViews > s.maxViews) {
		return models.CreateShareResponse{}, ErrShareLimitsExceeded
	}

	now := s.now().UTC()
	rec := models.ShareRecord{
		ShareID:    s.ids.GenerateOpaque(),
		Ciphertext: req.Ciphertext,
		Nonce:      req.Nonce,
		ExpiresAt:  now.Add(ttl),
		ViewsLeft:  req.MaxViews,
		CreatedAt:  now,
	}

	if err := s.shares.CreateShare(ctx, rec); err != nil {
		return models.CreateShareResponse{}, fmt.Errorf("error saving share: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("share_id", rec.ShareID).
		Time("expires_at", rec.ExpiresAt).
		Int("views", rec.ViewsLeft).
		Msg("share created")

	return models.CreateShareResponse{ShareID: rec.ShareID, ExpiresAt: rec.ExpiresAt}, nil
}

// ConsumeShare spends one view. Missing, expired and exhausted shares are
// all [store.ErrShareNotFound].
func (s *shareService) ConsumeShare(ctx context.Context, shareID string) (models.ShareRecord, error) {
	if shareID == "" {
		return models.ShareRecord{}, store.ErrShareNotFound
	}

	rec, err := s.shares.ConsumeShare(ctx, shareID, s.now())
	if err != nil {
		if !errors.Is(err, store.ErrShareNotFound) {
			logger.FromContext(ctx).Err(err).Str("share_id", shareID).Msg("error consuming share")
		}
		return models.ShareRecord{}, err
	}
	return rec, nil
}

// PurgeExpired removes shares that can no longer be opened.
func (s *shareService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.shares.PurgeShares(ctx, s.now())
}
