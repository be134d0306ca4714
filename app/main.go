package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gear-guard/internal/listeners"
	"gear-guard/internal/repositories"
	"gear-guard/internal/routes"
	"gear-guard/internal/services"
	"gear-guard/pkg/api"
	"gear-guard/pkg/config"
	"gear-guard/pkg/database"
	"gear-guard/pkg/docstore"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
	applogger "gear-guard/pkg/logger"
	"gear-guard/pkg/metrics"
	"gear-guard/pkg/middleware"
	"gear-guard/pkg/validation"
	"gear-guard/pkg/websocket"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init(prometheus.DefaultRegisterer)

	// 2. Echo и middleware
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = api.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	// 3. Хранилище: открывается при первом обращении, каждая операция ограничена по времени
	open := database.Opener(cfg, logger)
	timeouts := database.Timeouts(cfg)
	connector := docstore.NewConnector(func(ctx context.Context) (docstore.Store, error) {
		connectCtx, cancel := context.WithTimeout(ctx, timeouts.Default)
		defer cancel()
		store, err := open(connectCtx)
		if err != nil {
			return nil, err
		}
		return docstore.WithTimeout(store, timeouts), nil
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := connector.Close(closeCtx); err != nil {
			logger.Warn("Ошибка при закрытии хранилища", zap.Error(err))
		}
	}()
	repo := repositories.NewMaintenanceRepository(connector)

	// не фатально: сервер стартует и без хранилища, /health покажет 503
	if err := repo.Ping(ctx); err != nil {
		logger.Warn("Хранилище пока недоступно", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	// 4. Шина событий, WebSocket и (опционально) Redis
	bus := eventbus.New(logger)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	var feed repositories.ChangeFeedRepositoryInterface
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		feed = repositories.NewRedisChangeFeedRepository(redisClient, cfg.Redis.Channel)
	}

	changeListener := listeners.NewChangeListener(
		services.NewWebSocketNotificationService(hub, logger),
		feed,
		uuid.NewString(),
		logger,
	)
	changeListener.Register(bus)
	go func() {
		if err := changeListener.Run(ctx); err != nil {
			logger.Error("Подписка на канал изменений завершилась с ошибкой", zap.Error(err))
		}
	}()

	// 5. Маршруты
	routes.InitRouter(e, routes.Dependencies{
		Repo:           repo,
		Bus:            bus,
		Hub:            hub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	// 6. Запуск и остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	bus.Wait()
}
