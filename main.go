package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fiber-launcher/logging"
)

func main() {
	p, problems := resolve(os.Environ())

	logger, err := logging.New(p.Settings.LogLevel)
	if err != nil {
		log.Print(err)
		logger = zap.NewExample()
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	for _, problem := range problems {
		logger.Warn("configuration problem", zap.Error(problem))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, p, os.Stdout, os.Stderr); err != nil {
		logger.Error("launcher stopped", zap.Error(err))
	}
}
