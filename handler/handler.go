package handler

import (
	"sync"

	"github.com/emzola/prolibrary/config"
	"github.com/emzola/prolibrary/internal/jsonlog"
	"github.com/emzola/prolibrary/service"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	service service.Service

	// limiters holds one rate limiter per client IP. Idle clients expire.
	limiters  *ttlcache.Cache[string, *rate.Limiter]
	limiterMu sync.Mutex
}

// New creates a new instance of Handler.
func New(cfg config.Config, logger *jsonlog.Logger, limiters *ttlcache.Cache[string, *rate.Limiter], service service.Service) *Handler {
	return &Handler{
		config:   cfg,
		logger:   logger,
		limiters: limiters,
		service:  service,
	}
}
