package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/ludo-backend/internal/config"
	"github.com/rocketscienceinc/ludo-backend/internal/pkg"
	"github.com/rocketscienceinc/ludo-backend/internal/repository"
	"github.com/rocketscienceinc/ludo-backend/internal/repository/storage"
	"github.com/rocketscienceinc/ludo-backend/internal/usecase"
	"github.com/rocketscienceinc/ludo-backend/transport/rest"
	"github.com/rocketscienceinc/ludo-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	rnd := pkg.NewCryptoSource()

	roomRepo, err := newRoomRepository(ctx, logger, conf, rnd)
	if err != nil {
		return err
	}

	defer func() {
		if err = roomRepo.Close(); err != nil {
			log.Error("could not close room storage", "error", err)
		}
	}()

	hub := websocket.NewHub(logger)
	roomManager := usecase.NewRoomManager(logger, roomRepo, hub, rnd)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, roomManager)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager, hub, websocket.Options{
			AllowedOrigins: conf.Socket.AllowedOrigins,
			SendBuffer:     conf.Socket.SendBuffer,
		})
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newRoomRepository - picks the room store named in the config.
func newRoomRepository(
	ctx context.Context, logger *slog.Logger, conf *config.Config, rnd pkg.RandomSource,
) (repository.RoomRepository, error) {
	codes := func() string { return pkg.GenerateRoomCode(rnd) }

	if conf.Storage == config.StorageRedis {
		redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:     conf.Redis.GetRedisAddr(),
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		logger.Info("using redis room storage", "addr", conf.Redis.GetRedisAddr())

		return repository.NewRoomRepository(redisStorage.Connection, conf.Room.TTL, codes), nil
	}

	memoryRooms := repository.NewMemoryRoomRepository(logger, conf.Room.TTL, codes)
	go memoryRooms.Run(ctx, conf.Room.SweepInterval)

	logger.Info("using in-memory room storage")

	return memoryRooms, nil
}
