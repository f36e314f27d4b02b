package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

type roomReader interface {
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
}

type Server struct {
	logger *slog.Logger
	rooms  roomReader
}

func New(logger *slog.Logger, rooms roomReader) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

// Handler - builds the router.
func (that *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{id}", that.handleGetRoom).Methods(http.MethodGet, http.MethodOptions)

	return router
}

// Start - serves HTTP until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")
		writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if req.Method == http.MethodOptions {
			writer.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(writer, req)
	})
}
