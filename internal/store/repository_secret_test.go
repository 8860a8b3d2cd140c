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

func newTestSecretRepo(t *testing.T) (*secretRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	return &secretRepository{db: db, logger: logger.Nop()}, mock
}

var testRef = models.SecretRef{VaultID: "v1", Environment: "prod", Key: "DB_PASSWORD"}

func TestPutSecret_Upsert(t *testing.T) {
	repo, mock := newTestSecretRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE vaults SET key_version = key_version").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO secrets .* ON CONFLICT \\(vault_id, environment, secret_key\\) DO UPDATE").
		WithArgs("v1", "prod", "DB_PASSWORD", []byte("ct"), []byte("nonce"), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.PutSecret(context.Background(), models.EncryptedSecret{
		SecretRef:  testRef,
		Ciphertext: []byte("ct"),
		Nonce:      []byte("nonce"),
		KeyVersion: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
	expectationsMet(t, mock)
}

func TestPutSecret_StaleKeyVersion(t *testing.T) {
	repo, mock := newTestSecretRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE vaults SET key_version = key_version").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM vaults").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.PutSecret(context.Background(), models.EncryptedSecret{SecretRef: testRef, KeyVersion: 1})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestGetSecret(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newTestSecretRepo(t)
		mock.ExpectQuery("SELECT .* FROM secrets WHERE").
			WillReturnRows(sqlmock.NewRows(secretColumns).
				AddRow("v1", "prod", "DB_PASSWORD", []byte("ct"), []byte("nonce"), 2, time.Now().UTC()))

		s, err := repo.GetSecret(context.Background(), testRef)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Ref() != testRef || s.KeyVersion != 2 {
			t.Errorf("unexpected secret: %+v", s)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestSecretRepo(t)
		mock.ExpectQuery("SELECT .* FROM secrets WHERE").
			WillReturnRows(sqlmock.NewRows(secretColumns))

		_, err := repo.GetSecret(context.Background(), testRef)
		if !errors.Is(err, ErrSecretNotFound) {
			t.Fatalf("expected ErrSecretNotFound, got %v", err)
		}
	})
}

func TestListSecrets_EnvironmentFilter(t *testing.T) {
	repo, mock := newTestSecretRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM secrets WHERE environment = \\$1 AND vault_id = \\$2 ORDER BY environment, secret_key").
		WithArgs("prod", "v1").
		WillReturnRows(sqlmock.NewRows(secretColumns).
			AddRow("v1", "prod", "A", []byte("1"), []byte("n"), 1, now).
			AddRow("v1", "prod", "B", []byte("2"), []byte("n"), 1, now))

	secrets, err := repo.ListSecrets(context.Background(), "v1", "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secrets) != 2 || secrets[0].Key != "A" {
		t.Errorf("unexpected secrets: %+v", secrets)
	}
	expectationsMet(t, mock)
}

func TestListSecrets_AllEnvironments(t *testing.T) {
	repo, mock := newTestSecretRepo(t)

	mock.ExpectQuery("SELECT .* FROM secrets WHERE vault_id = \\$1 ORDER BY").
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows(secretColumns))

	secrets, err := repo.ListSecrets(context.Background(), "v1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secrets == nil || len(secrets) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", secrets)
	}
}

func TestDeleteSecret(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newTestSecretRepo(t)
		mock.ExpectExec("DELETE FROM secrets WHERE").WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.DeleteSecret(context.Background(), testRef); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newTestSecretRepo(t)
		mock.ExpectExec("DELETE FROM secrets WHERE").WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.DeleteSecret(context.Background(), testRef); !errors.Is(err, ErrSecretNotFound) {
			t.Fatalf("expected ErrSecretNotFound, got %v", err)
		}
	})
}
