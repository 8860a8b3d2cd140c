package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/mock"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/models"
)

const (
	testToken  = "valid-token"
	testUserID = int64(7)
	testVault  = "0190c3d2-aaaa-7bbb-8ccc-000000000001"
)

type fixture struct {
	auth    *mock.MockAuthService
	vaults  *mock.MockVaultService
	shares  *mock.MockShareService
	appInfo *mock.MockAppInfoService

	handler *Handler
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		auth:    mock.NewMockAuthService(ctrl),
		vaults:  mock.NewMockVaultService(ctrl),
		shares:  mock.NewMockShareService(ctrl),
		appInfo: mock.NewMockAppInfoService(ctrl),
	}

	f.handler = NewHandler(&service.Services{
		AuthService:    f.auth,
		VaultService:   f.vaults,
		ShareService:   f.shares,
		AppInfoService: f.appInfo,
	}, config.Share{ResolveRPS: 1, ResolveBurst: 2}, logger.Nop())
	f.router = f.handler.Init()

	return f
}

// authorized makes the auth middleware accept testToken as testUserID.
func (f *fixture) authorized() {
	f.auth.EXPECT().
		ParseToken(gomock.Any(), testToken).
		Return(models.Token{UserID: testUserID}, nil).
		AnyTimes()
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}
