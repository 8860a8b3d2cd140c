package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
)

// maxBodyBytes bounds every JSON request body. A rotation carrying every
// secret of a large vault is the biggest legitimate request.
const maxBodyBytes = 8 << 20

type Handler struct {
	services *service.Services

	shareLimiter *ipRateLimiter
	registry     *prometheus.Registry
	metrics      *httpMetrics

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Share, logger *logger.Logger) *Handler {
	registry := prometheus.NewRegistry()

	logger.Info().Msg("http handler created")
	return &Handler{
		services:     services,
		shareLimiter: newIPRateLimiter(cfg.ResolveRPS, cfg.ResolveBurst),
		registry:     registry,
		metrics:      newHTTPMetrics(registry),
		logger:       logger,
	}
}
