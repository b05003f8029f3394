package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/repository"
	"github.com/recouphq/voicebridge/internal/session"
	"github.com/recouphq/voicebridge/internal/telephony"
)

// Server exposes the HTTP surface: health, outbound call initiation, the
// telephony voice webhook, call lookup, and the media stream socket.
type Server struct {
	cfg       *config.Config
	manager   *session.Manager
	repo      repository.Repository
	initiator telephony.Initiator
	echo      *echo.Echo
	now       func() time.Time
}

func New(cfg *config.Config, manager *session.Manager, repo repository.Repository, initiator telephony.Initiator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		cfg:       cfg,
		manager:   manager,
		repo:      repo,
		initiator: initiator,
		echo:      e,
		now:       time.Now,
	}

	e.GET("/health", s.handleHealth)
	e.GET("/ws/voice", s.handleVoiceStream)
	e.POST("/calls", s.handleInitiateCall)
	e.GET("/calls/:callSid", s.handleGetCall)
	e.POST("/twilio/voice", s.handleVoiceWebhook)
	e.POST("/twilio/status", s.handleCallStatus)

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("http server starting", "addr", s.cfg.BindAddr)
	if err := s.echo.Start(s.cfg.BindAddr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
