package http

import (
	_ "embed"
	"fmt"
	stdhttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

//go:embed static/index.html
var indexHTML []byte

// NewServer builds the public HTTP server. GET / serves the chat page, or
// upgrades to a WebSocket when the request asks for it. Every other route is 404.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(hub, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine behind NewServer.
func NewRouter(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	ws := NewWSHandler(hub, cfg, logger)
	router.GET("/", func(c *gin.Context) {
		if isWebSocketUpgrade(c.Request) {
			ws.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.Data(stdhttp.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	return router
}

// NewAdminServer builds the operational listener exposing /metrics and /health.
func NewAdminServer(hub *core.Hub, cfg *config.Config, rec *metrics.Recorder, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))
	router.GET("/metrics", gin.WrapH(rec.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.Header("X-Wirechat-Sessions", fmt.Sprint(hub.SessionCount()))
		c.String(stdhttp.StatusOK, "ok")
	})

	return &stdhttp.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func isWebSocketUpgrade(r *stdhttp.Request) bool {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	for _, v := range r.Header.Values("Connection") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
				return true
			}
		}
	}
	return false
}
