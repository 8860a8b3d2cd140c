package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func newTestShareRepo(t *testing.T) (*shareRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	return &shareRepository{db: db, logger: logger.Nop()}, mock
}

var shareColumns = []string{"share_id", "ciphertext", "nonce", "expires_at", "views_left", "created_at"}

func TestCreateShare(t *testing.T) {
	repo, mock := newTestShareRepo(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO shares").
		WithArgs("s1", []byte("ct"), []byte("nonce"), now.Add(time.Hour).UTC(), 3, now.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateShare(context.Background(), models.ShareRecord{
		ShareID:    "s1",
		Ciphertext: []byte("ct"),
		Nonce:      []byte("nonce"),
		ExpiresAt:  now.Add(time.Hour),
		ViewsLeft:  3,
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestConsumeShare_SpendsView(t *testing.T) {
	repo, mock := newTestShareRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE shares SET views_left = views_left - 1 WHERE share_id = \\$1 AND .*expires_at > \\$2 AND views_left > \\$3").
		WithArgs("s1", now, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM shares WHERE share_id = \\$1").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(shareColumns).
			AddRow("s1", []byte("ct"), []byte("nonce"), now.Add(time.Hour), 0, now))
	mock.ExpectCommit()

	rec, err := repo.ConsumeShare(context.Background(), "s1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ViewsLeft != 0 || string(rec.Ciphertext) != "ct" {
		t.Errorf("unexpected record: %+v", rec)
	}
	expectationsMet(t, mock)
}

func TestConsumeShare_ExhaustedOrExpired(t *testing.T) {
	repo, mock := newTestShareRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE shares SET views_left = views_left - 1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.ConsumeShare(context.Background(), "s1", time.Now())
	if !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("expected ErrShareNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestPurgeShares(t *testing.T) {
	repo, mock := newTestShareRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM shares WHERE .*expires_at <= \\$1 OR views_left <= \\$2").
		WithArgs(now, 0).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.PurgeShares(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 purged, got %d", n)
	}
	expectationsMet(t, mock)
}
