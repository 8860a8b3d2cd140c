package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	return &userRepository{db: db, logger: logger.Nop()}, mock
}

func testUser() models.User {
	return models.User{
		Login:          "alice",
		AuthHash:       "hash",
		EncryptionSalt: make([]byte, 16),
		PublicKey:      make([]byte, 32),
		WrappedPrivateKey: models.WrappedPrivateKey{
			Ciphertext: []byte("wrapped"),
			Nonce:      make([]byte, 24),
		},
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	user := testUser()

	mock.ExpectQuery("INSERT INTO users .* RETURNING user_id").
		WithArgs(user.Login, user.AuthHash, user.EncryptionSalt, user.PublicKey,
			user.WrappedPrivateKey.Ciphertext, user.WrappedPrivateKey.Nonce, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	created, err := repo.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID != 7 {
		t.Errorf("expected UserID=7, got %d", created.UserID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	expectationsMet(t, mock)
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(context.Background(), testUser())
	if !errors.Is(err, ErrLoginAlreadyExists) {
		t.Fatalf("expected ErrLoginAlreadyExists, got %v", err)
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(context.Background(), testUser())
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestFindUserByLogin_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(userColumns).
		AddRow(3, "alice", "hash", []byte("salt"), []byte("pub"), []byte("ct"), []byte("nonce"), now)
	mock.ExpectQuery("SELECT .* FROM users WHERE login = \\$1").
		WithArgs("alice").
		WillReturnRows(rows)

	u, err := repo.FindUserByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UserID != 3 || u.Login != "alice" {
		t.Errorf("unexpected user: %+v", u)
	}
	if string(u.WrappedPrivateKey.Ciphertext) != "ct" || string(u.WrappedPrivateKey.Nonce) != "nonce" {
		t.Errorf("wrapped private key not scanned: %+v", u.WrappedPrivateKey)
	}
	expectationsMet(t, mock)
}

func TestFindUserByID_NotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT .* FROM users WHERE user_id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByID(context.Background(), 42)
	if !errors.Is(err, ErrNoUserWasFound) {
		t.Fatalf("expected ErrNoUserWasFound, got %v", err)
	}
}

func TestUpdateCredentials(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)
		mock.ExpectExec("UPDATE users SET auth_hash").
			WillReturnResult(sqlmock.NewResult(0, 1))

		user := testUser()
		user.UserID = 1
		if err := repo.UpdateCredentials(context.Background(), user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)
		mock.ExpectExec("UPDATE users SET auth_hash").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateCredentials(context.Background(), testUser())
		if !errors.Is(err, ErrNoUserWasFound) {
			t.Fatalf("expected ErrNoUserWasFound, got %v", err)
		}
	})
}
