package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// NewRouter wires the middleware and routes.
func NewRouter(repo Repository, logger *zap.Logger) *gin.Engine {
	h := NewHandler(repo, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))

	r.GET("/health", h.Health)

	slots := r.Group("/slot-time")
	{
		slots.GET("", h.ListSlots)
		slots.POST("", h.CreateSlots)
		slots.DELETE("/:id", h.DeleteSlot)
	}

	appts := r.Group("/appointments")
	{
		appts.GET("", h.ListAppointments)
		appts.POST("", h.BookSlot)
		appts.POST("/:id/cancel", h.CancelAppointment)
	}

	r.GET("/export/week", h.ExportWeek)

	return r
}

// Run serves the router on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
