package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"audio_conversion/config"
	"audio_conversion/entity"
	v1 "audio_conversion/internal/controller/http/v1"
	"audio_conversion/internal/controller/rmq"
	"audio_conversion/internal/conversion"
	"audio_conversion/internal/storage"
	"audio_conversion/internal/telemetry/metric"
	ttrace "audio_conversion/internal/telemetry/trace"
	"audio_conversion/pkg/audio_converter"
	"audio_conversion/pkg/httpserver"
	"audio_conversion/pkg/logger"
)

const shutdownFlushTimeout = 10 * time.Second

// Server owns the tracer providers that must be flushed on exit.
type Server struct {
	l                    logger.Interface
	traceProviderCloseFn []ttrace.CloseFunc
}

// NewServer ...
func NewServer(ctx context.Context, cfg *config.Config, l logger.Interface) *Server {
	srv := &Server{l: l}

	if err := srv.InitGlobalProvider(ctx, cfg); err != nil {
		l.Warn("tracing disabled: %v", err)
	}

	return srv
}

// Run wires the service, serves HTTP and blocks until a signal or a server error.
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	l := s.l
	l.Info("Starting %s %s...", cfg.App.Name, cfg.App.Version)

	metrics := metric.NewMetrics()

	if cfg.Storage.FolderID == "" {
		l.Warn("FOLDER_ID is not set: link delivery will fail until it is configured")
	}
	publisher, err := storage.NewLinkPublisher(ctx, cfg.Storage, metrics, l)
	if err != nil {
		l.Error(fmt.Errorf("storage backend %q unavailable, link delivery disabled: %w", cfg.Storage.Backend, err))
	}
	if c, ok := publisher.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				l.Error(fmt.Errorf("app - Run - close storage backend: %w", err))
			}
		}()
	}

	var events entity.EventPublisher
	if cfg.RMQ.URL != "" {
		ep, err := rmq.NewEventPublisher(cfg.RMQ, l)
		if err != nil {
			l.Error(fmt.Errorf("conversion events disabled: %w", err))
		} else {
			events = ep
			defer ep.Close()
		}
	}

	cu := conversion.NewConversionUsecase(
		audio_converter.NewAudioConverter(),
		publisher,
		events,
		metrics,
		l,
		conversion.Options{
			TempDir:         cfg.Converter.TempDir,
			DefaultDelivery: entity.Delivery(cfg.Server.DeliveryMode),
			DefaultProfile:  entity.Profile(cfg.Converter.Profile),
			ConvertTimeout:  cfg.Converter.Timeout,
		},
	)

	handler := gin.New()
	v1.NewRouter(handler, l, cu, metrics, v1.RouterOptions{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		StaticDir:      cfg.Static.Dir,
		StaticIndex:    cfg.Static.Index,
	})
	httpServer := httpserver.New(s.cors().Handler(handler),
		httpserver.Port(cfg.Server.Port),
		httpserver.ReadTimeout(cfg.Server.ReadTimeout),
		httpserver.WriteTimeout(cfg.Server.WriteTimeout),
		httpserver.ShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	l.Info("server serving on port %s", cfg.Server.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case runErr = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", runErr))
	case <-ctx.Done():
		l.Info("app - Run - context done")
	}

	// Shutdown
	if serr := httpServer.Shutdown(); serr != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", serr))
	}

	l.Info("server exited properly")

	s.Close()

	return runErr
}

// Close flushes the tracer providers.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()

	for _, closeFn := range s.traceProviderCloseFn {
		if err := closeFn(ctx); err != nil {
			s.l.Error(fmt.Errorf("unable to close trace provider: %w", err))
		}
	}
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"POST", "GET", "HEAD", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposedHeaders:     []string{"Content-Disposition"},
		MaxAge:             60, // 1 minutes
		AllowCredentials:   true,
		OptionsPassthrough: false,
		Debug:              false,
	})
}
