// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

const testVault = "0190c3d2-aaaa-7bbb-8ccc-000000000001"

// newTestAdapter returns an adapter pointed at serverURL.
func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()

	a, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second}, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func decodeRequest[T any](t *testing.T, r *http.Request) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
	return v
}

// ── construction ────────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "host only", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "trailing slash", raw: "https://keeper.example.com/", want: "https://keeper.example.com"},
		{name: "spaces", raw: "  http://a:1  ", want: "http://a:1"},
		{name: "empty", raw: "", wantErr: true},
		{name: "no host", raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPServerAdapter_EmptyAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{}, logger.Nop())
	assert.Error(t, err)
}

// ── Register / Params / Login ───────────────────────────────────────────────

func TestRegister_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		u := decodeRequest[models.User](t, r)
		assert.Equal(t, "alice", u.Login)
		u.UserID = 9
		u.AuthHash = ""

		w.Header().Set("Authorization", "Bearer token-1")
		writeJSON(t, w, http.StatusCreated, u)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Register(context.Background(), models.User{Login: "alice", AuthHash: "h"})

	require.NoError(t, err)
	assert.Equal(t, int64(9), got.UserID)
	assert.Equal(t, "token-1", a.Token())
}

func TestRegister_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, utils.ErrorResponse{Error: "login already exists"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Register(context.Background(), models.User{Login: "alice"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "login already exists")
	assert.Empty(t, a.Token())
}

func TestRegister_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, models.User{Login: "alice"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Register(context.Background(), models.User{Login: "alice"})

	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	salt := []byte("0123456789abcdef")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/params", r.URL.Path)
		req := decodeRequest[models.ParamsRequest](t, r)
		assert.Equal(t, "alice", req.Login)

		writeJSON(t, w, http.StatusOK, models.KDFParams{Salt: salt, Algorithm: "argon2id", Time: 3, MemoryKiB: 65536, Threads: 4})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	params, err := a.Params(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, salt, params.Salt)
	assert.Equal(t, uint32(65536), params.MemoryKiB)
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		req := decodeRequest[models.LoginRequest](t, r)
		assert.Equal(t, "hash", req.AuthHash)

		w.Header().Set("Authorization", "Bearer token-2")
		writeJSON(t, w, http.StatusOK, models.User{
			UserID:            3,
			Login:             "alice",
			WrappedPrivateKey: models.WrappedPrivateKey{Ciphertext: []byte{1}, Nonce: []byte{2}},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	user, err := a.Login(context.Background(), models.LoginRequest{Login: "alice", AuthHash: "hash"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)
	assert.Equal(t, []byte{1}, user.WrappedPrivateKey.Ciphertext)
	assert.Equal(t, "token-2", a.Token())
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, utils.ErrorResponse{Error: "wrong password"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), models.LoginRequest{Login: "alice", AuthHash: "x"})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── authenticated calls ─────────────────────────────────────────────────────

func TestAuthedRequest_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/vaults", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []models.Vault{{VaultID: testVault, Name: "payments"}})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("  secret-token ")

	vaults, err := a.ListVaults(context.Background())

	require.NoError(t, err)
	require.Len(t, vaults, 1)
	assert.Equal(t, "payments", vaults[0].Name)
}

func TestFindMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/bob", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.Member{UserID: 4, Login: "bob", PublicKey: []byte{7}})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	member, err := a.FindMember(context.Background(), "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(4), member.UserID)
}

func TestCreateVault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		req := decodeRequest[models.CreateVaultRequest](t, r)
		writeJSON(t, w, http.StatusCreated, models.Vault{VaultID: testVault, Name: req.Name, KeyVersion: 1})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	vault, err := a.CreateVault(context.Background(), models.CreateVaultRequest{Name: "payments", WrappedKey: []byte{1}})

	require.NoError(t, err)
	assert.Equal(t, testVault, vault.VaultID)
}

func TestGetWrappedKey_NotAMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults/"+testVault+"/key", r.URL.Path)
		writeJSON(t, w, http.StatusForbidden, utils.ErrorResponse{Error: "not a member"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetWrappedKey(context.Background(), testVault)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGrantAccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults/"+testVault+"/members", r.URL.Path)
		req := decodeRequest[models.GrantRequest](t, r)
		assert.Equal(t, int64(4), req.UserID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.GrantAccess(context.Background(), testVault, models.GrantRequest{UserID: 4, WrappedKey: []byte{1}, KeyVersion: 1})

	assert.NoError(t, err)
}

func TestRotate_ReturnsVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults/"+testVault+"/rotate", r.URL.Path)
		req := decodeRequest[models.RotateRequest](t, r)
		assert.Equal(t, []int64{4}, req.RemovedMembers)
		writeJSON(t, w, http.StatusOK, models.RotateResponse{KeyVersion: req.KeyVersion + 1})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	version, err := a.Rotate(context.Background(), testVault, models.RotateRequest{KeyVersion: 1, RemovedMembers: []int64{4}})

	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestRotate_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, utils.ErrorResponse{Error: "key version conflict"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Rotate(context.Background(), testVault, models.RotateRequest{KeyVersion: 1})

	assert.ErrorIs(t, err, ErrConflict)
}

// ── secrets ─────────────────────────────────────────────────────────────────

func TestPutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/vaults/"+testVault+"/secrets", r.URL.Path)
		s := decodeRequest[models.EncryptedSecret](t, r)
		writeJSON(t, w, http.StatusOK, s)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	secret := models.EncryptedSecret{
		SecretRef:  models.SecretRef{VaultID: testVault, Environment: "prod", Key: "API_KEY"},
		Ciphertext: []byte{1, 2},
		Nonce:      []byte{3},
		KeyVersion: 1,
	}
	saved, err := a.PutSecret(context.Background(), secret)

	require.NoError(t, err)
	assert.Equal(t, secret.SecretRef, saved.SecretRef)
}

func TestGetSecret_Path(t *testing.T) {
	ref := models.SecretRef{VaultID: testVault, Environment: "staging", Key: "DB_URL"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults/"+testVault+"/secrets/staging/DB_URL", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.EncryptedSecret{SecretRef: ref, Ciphertext: []byte{9}})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	secret, err := a.GetSecret(context.Background(), ref)

	require.NoError(t, err)
	assert.Equal(t, ref, secret.SecretRef)
}

func TestListSecrets_EnvironmentFilter(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{name: "filtered", env: "prod", want: "prod"},
		{name: "all", env: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.want, r.URL.Query().Get("environment"))
				assert.Equal(t, tt.env != "", r.URL.Query().Has("environment"))
				writeJSON(t, w, http.StatusOK, []models.EncryptedSecret{})
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL)
			secrets, err := a.ListSecrets(context.Background(), testVault, tt.env)

			require.NoError(t, err)
			assert.Empty(t, secrets)
		})
	}
}

func TestDeleteSecret_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(t, w, http.StatusNotFound, utils.ErrorResponse{Error: "secret not found"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.DeleteSecret(context.Background(), models.SecretRef{VaultID: testVault, Environment: "prod", Key: "K"})

	assert.ErrorIs(t, err, ErrNotFound)
}

// ── shares ──────────────────────────────────────────────────────────────────

func TestCreateShare(t *testing.T) {
	expires := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shares", r.URL.Path)
		req := decodeRequest[models.CreateShareRequest](t, r)
		assert.Equal(t, 2, req.MaxViews)
		writeJSON(t, w, http.StatusCreated, models.CreateShareResponse{ShareID: "abc", ExpiresAt: expires})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("t")
	resp, err := a.CreateShare(context.Background(), models.CreateShareRequest{Ciphertext: []byte{1}, Nonce: []byte{2}, TTLSeconds: 60, MaxViews: 2})

	require.NoError(t, err)
	assert.Equal(t, "abc", resp.ShareID)
	assert.True(t, expires.Equal(resp.ExpiresAt))
}

func TestOpenShare_NoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shares/abc", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, models.ShareRecord{ShareID: "abc", Ciphertext: []byte{1}, ViewsLeft: 0})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("should-not-be-sent")

	rec, err := a.OpenShare(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc", rec.ShareID)
}

func TestOpenShare_MappedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "gone", status: http.StatusNotFound, want: ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrTooManyRequests},
		{name: "server error", status: http.StatusInternalServerError, want: ErrInternalServerError},
		{name: "bad gateway", status: http.StatusBadGateway, want: ErrBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL)
			_, err := a.OpenShare(context.Background(), "abc")

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapHTTPError_UnknownStatusUsesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.OpenShare(context.Background(), "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
	assert.Contains(t, err.Error(), http.StatusText(http.StatusTeapot))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text\n")))
	assert.Equal(t, "", errorMessage(nil))
}
