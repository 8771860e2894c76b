package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/logger"
	mailadapter "github.com/sparxmathsalternative/damnis/internal/infrastructure/mail/adapter"
	queueadapter "github.com/sparxmathsalternative/damnis/internal/infrastructure/queue/adapter"
	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/task"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found or could not be loaded", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := queueadapter.NewAsynqServer()
	if err != nil {
		logger.Error("queue server setup failed", zap.Error(err))
		os.Exit(1)
	}

	mailer, err := mailadapter.NewSMTPMailerFromEnv()
	if err != nil {
		logger.Error("mailer setup failed", zap.Error(err))
		os.Exit(1)
	}

	task.RegisterSendVerificationEmailTask(srv, mailer)

	logger.Info("worker started")
	if err := srv.Run(ctx); err != nil {
		logger.Error("worker stopped", zap.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(stopCtx)
}
