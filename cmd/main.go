package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"safetyrisk/config"
	shttp "safetyrisk/http"
	"safetyrisk/logging"
	"safetyrisk/ml"
)

func main() {
	// 1. Load config; a missing config.yaml means built-in defaults
	cfg, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. Load the model once; without it nothing can be served
	server, err := initializeServices(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	// 3. Serve until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return server.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("exiting")
}

func initializeServices(cfg *config.Config, logger *zap.Logger) (*shttp.Server, error) {
	tree, err := ml.LoadModel(cfg.ML.ModelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		zap.String("path", cfg.ML.ModelPath),
		zap.Strings("classes", tree.Classes()),
		zap.Int("features", tree.NumFeatures()),
	)

	classifier, err := ml.NewCachedClassifier(tree, cfg.ML.CacheSize)
	if err != nil {
		return nil, err
	}
	predictor, err := ml.NewPredictor(classifier)
	if err != nil {
		return nil, err
	}
	handler, err := shttp.NewHandler(predictor, logger)
	if err != nil {
		return nil, err
	}

	return shttp.NewServer(shttp.ServerConfig{
		Port:         cfg.HTTP.Port,
		Timeout:      cfg.HTTP.Timeout,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}, handler, logger), nil
}
