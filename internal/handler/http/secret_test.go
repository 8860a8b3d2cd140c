package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func TestPutSecret_VaultIDFromPath(t *testing.T) {
	f := newFixture(t)
	f.authorized()
	body := models.EncryptedSecret{
		SecretRef:  models.SecretRef{VaultID: "other-vault", Environment: "prod", Key: "DB_URL"},
		Ciphertext: []byte("ct"),
		Nonce:      []byte("n"),
		KeyVersion: 1,
	}

	f.vaults.EXPECT().
		PutSecret(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, s models.EncryptedSecret) (models.EncryptedSecret, error) {
			assert.Equal(t, testVault, s.VaultID)
			return s, nil
		})

	rr := f.do(t, http.MethodPut, "/api/vaults/"+testVault+"/secrets", body, testToken)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testVault, decodeBody[models.EncryptedSecret](t, rr).VaultID)
}

func TestPutSecret_StaleKeyVersion(t *testing.T) {
	f := newFixture(t)
	f.authorized()

	f.vaults.EXPECT().PutSecret(gomock.Any(), testUserID, gomock.Any()).Return(models.EncryptedSecret{}, store.ErrVersionConflict)

	rr := f.do(t, http.MethodPut, "/api/vaults/"+testVault+"/secrets", models.EncryptedSecret{}, testToken)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestListSecrets_EnvironmentFilter(t *testing.T) {
	f := newFixture(t)
	f.authorized()

	f.vaults.EXPECT().ListSecrets(gomock.Any(), testUserID, testVault, "staging").Return(nil, nil)

	rr := f.do(t, http.MethodGet, "/api/vaults/"+testVault+"/secrets?environment=staging", nil, testToken)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestGetSecret(t *testing.T) {
	f := newFixture(t)
	f.authorized()
	ref := models.SecretRef{VaultID: testVault, Environment: "prod", Key: "DB_URL"}

	f.vaults.EXPECT().GetSecret(gomock.Any(), testUserID, ref).Return(models.EncryptedSecret{SecretRef: ref, KeyVersion: 3}, nil)

	rr := f.do(t, http.MethodGet, "/api/vaults/"+testVault+"/secrets/prod/DB_URL", nil, testToken)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(3), decodeBody[models.EncryptedSecret](t, rr).KeyVersion)
}

func TestGetSecret_NotFound(t *testing.T) {
	f := newFixture(t)
	f.authorized()

	f.vaults.EXPECT().GetSecret(gomock.Any(), testUserID, gomock.Any()).Return(models.EncryptedSecret{}, store.ErrSecretNotFound)

	rr := f.do(t, http.MethodGet, "/api/vaults/"+testVault+"/secrets/prod/NOPE", nil, testToken)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteSecret(t *testing.T) {
	f := newFixture(t)
	f.authorized()
	ref := models.SecretRef{VaultID: testVault, Environment: "prod", Key: "DB_URL"}

	f.vaults.EXPECT().DeleteSecret(gomock.Any(), testUserID, ref).Return(nil)

	rr := f.do(t, http.MethodDelete, "/api/vaults/"+testVault+"/secrets/prod/DB_URL", nil, testToken)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
