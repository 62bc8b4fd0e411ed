// Package main 是服务端的入口点
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/cache"
	"mealmood-server/internal/config"
	"mealmood-server/internal/database"
	"mealmood-server/internal/handler"
	"mealmood-server/internal/logger"
	"mealmood-server/internal/middleware"
	"mealmood-server/internal/provider"
	"mealmood-server/internal/repository"
	"mealmood-server/internal/service"
	"mealmood-server/internal/websocket"
	"mealmood-server/pkg/jwt"
)

func main() {
	configDir := flag.String("config", "./configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.OpenWithConfig(cfg.Database, cfg.Server.Mode, log.Named("gorm"))
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("Database ready", zap.String("driver", cfg.Database.Driver))

	store, err := newCache(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpire, cfg.JWT.RefreshExpire)

	bot, err := newAssistant(cfg, log)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	turnRepo := repository.NewChatTurnRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	authService := service.NewAuthService(userRepo, store, jwtService)
	chatService := service.NewChatService(sessionRepo, turnRepo, bot, store, log.Named("chat"))

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(chatService, cfg.Server.WriteTimeout, log.Named("ws"))
	go hub.Run(hubCtx)

	chatHandler := handler.NewChatHandler(chatService)
	chatHandler.SetNotifier(hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.LoggerMiddleware(log.Named("http")))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.Server.CORS)))

	handler.RegisterRoutes(router, handler.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.JWT.CookieSecure,
			MaxAge: cfg.JWT.AccessExpire,
		}),
		User:      handler.NewUserHandler(service.NewUserService(userRepo)),
		Session:   handler.NewSessionHandler(service.NewSessionService(sessionRepo, turnRepo), chatService),
		Chat:      chatHandler,
		Bookmark:  handler.NewBookmarkHandler(service.NewBookmarkService(bookmarkRepo)),
		Assistant: handler.NewAssistantHandler(),
	}, middleware.AuthMiddleware(jwtService, store, cfg.JWT.CookieName))

	websocket.NewHandler(hub, jwtService, store, cfg.JWT.CookieName, cfg.Server.CORS, log.Named("ws")).
		RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	stopHub()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}

// newCache Redis 关闭时退回进程内缓存，只适合单实例部署
func newCache(cfg *config.Config, log *zap.Logger) (cache.Cache, error) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, using in-memory cache")
		return cache.NewMemoryCache(cfg.Assistant.RecentFoods, cfg.Redis.RecentTTL), nil
	}
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Redis connected", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	return redisCache, nil
}

// newAssistant 组装外部服务和助手状态机
func newAssistant(cfg *config.Config, log *zap.Logger) (*assistant.Assistant, error) {
	llm := provider.NewOpenAI(cfg.OpenAI, log.Named("openai"))
	searcher, err := provider.NewWebSearcher(cfg.Search, llm, cfg.OpenAI, log.Named("search"))
	if err != nil {
		return nil, err
	}
	places, err := provider.NewPlaces(cfg.Places, log.Named("places"))
	if err != nil {
		return nil, err
	}
	apps := provider.NewLocalApps(cfg.Apps.Enabled, log.Named("apps"))

	recommender := assistant.NewRecommender(llm, assistant.RecommenderConfig{
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
	}, log.Named("recommend"))
	dispatcher := assistant.NewDispatcher(llm, searcher, apps, log.Named("dispatch"))

	return assistant.New(llm, searcher, places, recommender, dispatcher, assistant.Options{
		GeneralTasks: cfg.Assistant.GeneralTasks,
	}, log.Named("assistant")), nil
}
