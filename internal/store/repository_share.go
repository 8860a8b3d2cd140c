package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// shareRepository is the SQL implementation of [ShareRepository].
type shareRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewShareRepository constructs a [ShareRepository] over db.
func NewShareRepository(db *DB, logger *logger.Logger) ShareRepository {
	logger.Debug().Msg("creating share repository")
	return &shareRepository{db: db, logger: logger}
}

// CreateShare implements [ShareRepository].
func (r *shareRepository) CreateShare(ctx context.Context, share models.ShareRecord) error {
	_, err := execAffecting(ctx, r.db, r.db.builder.
		Insert("shares").
		Columns("share_id", "ciphertext", "nonce", "expires_at", "views_left", "created_at").
		Values(share.ShareID, share.Ciphertext, share.Nonce, share.ExpiresAt.UTC(), share.ViewsLeft, share.CreatedAt.UTC()))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*shareRepository.CreateShare").Msg("error saving share")
		return err
	}
	return nil
}

// ConsumeShare decrements the view counter and returns the payload in one
// transaction. The conditional UPDATE is what enforces expiry and the view
// budget, so two concurrent readers can never both take the last view.
func (r *shareRepository) ConsumeShare(ctx context.Context, shareID string, now time.Time) (models.ShareRecord, error) {
	var rec models.ShareRecord

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		n, err := execAffecting(ctx, tx, r.db.builder.
			Update("shares").
			Set("views_left", sq.Expr("views_left - 1")).
			Where(sq.Eq{"share_id": shareID}).
			Where(sq.Gt{"views_left": 0, "expires_at": now.UTC()}))
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShareNotFound
		}

		query, args, err := r.db.builder.
			Select("share_id", "ciphertext", "nonce", "expires_at", "views_left", "created_at").
			From("shares").
			Where(sq.Eq{"share_id": shareID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		err = tx.QueryRowContext(ctx, query, args...).Scan(
			&rec.ShareID, &rec.Ciphertext, &rec.Nonce, &rec.ExpiresAt, &rec.ViewsLeft, &rec.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShareNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrShareNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*shareRepository.ConsumeShare").Msg("error consuming share")
		}
		return models.ShareRecord{}, err
	}

	return rec, nil
}

// PurgeShares deletes expired and exhausted shares and returns how many
// were removed.
func (r *shareRepository) PurgeShares(ctx context.Context, now time.Time) (int64, error) {
	n, err := execAffecting(ctx, r.db, r.db.builder.
		Delete("shares").
		Where(sq.Or{
			sq.LtOrEq{"expires_at": now.UTC()},
			sq.LtOrEq{"views_left": 0},
		}))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*shareRepository.PurgeShares").Msg("error purging shares")
		return 0, err
	}
	return n, nil
}
