package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "github.com/sparxmathsalternative/damnis/cmd/api/router/v1"
	cacheadapter "github.com/sparxmathsalternative/damnis/internal/infrastructure/cache/adapter"
	"github.com/sparxmathsalternative/damnis/internal/infrastructure/database"
	"github.com/sparxmathsalternative/damnis/internal/infrastructure/gateway"
	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	queueadapter "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/adapter"
	repoadapter "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/adapter"
	msgcache "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/dispatch"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/eventclient"
	bridgehttp "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/presentation/http"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/sink"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found or could not be loaded", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(connectCtx)
	if err != nil {
		logger.Error("database connection failed", zap.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	redis, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		logger.Error("redis connection failed", zap.Error(err))
		os.Exit(1)
	}
	defer redis.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Error("queue client setup failed", zap.Error(err))
		os.Exit(1)
	}
	defer queueClient.Close()

	gw, err := gateway.NewGatewayFromEnv()
	if err != nil {
		logger.Error("gateway setup failed", zap.Error(err))
		os.Exit(1)
	}
	rest, err := gateway.NewRESTFromEnv()
	if err != nil {
		logger.Error("platform client setup failed", zap.Error(err))
		os.Exit(1)
	}

	users := repoadapter.NewPgUserRepository(pool)
	sessions := repoadapter.NewCacheSessionStore(redis)

	mc := msgcache.New(msgcache.DefaultCapacity)
	dispatcher := dispatch.New(64)
	ec := eventclient.New(gw, dispatcher, mc, nil)
	resolver := sink.NewResolver(rest, ec.SelfID)

	// The event client owns the gateway connection and drains the dispatcher;
	// it runs until shutdown or a fatal gateway error.
	go func() {
		if err := ec.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event client stopped", zap.Error(err))
		}
	}()

	r := gin.Default()
	v1.RegisterRoutes(r, bridgehttp.Deps{
		EventClient: ec,
		Cache:       mc,
		Client:      rest,
		Dispatcher:  dispatcher,
		Resolver:    resolver,
		Users:       users,
		Sessions:    sessions,
	}, queueClient)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	_ = gw.Close()
}
