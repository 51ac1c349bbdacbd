package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/statement-parser/internal/app"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.Server.APIKey == "" {
		logger.Error("API_KEY env var is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, app.Options{WithDatabase: true, WithCache: true}, logger)
	if err != nil {
		logger.Error("failed to build runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.Server, rt.ServerDeps(), logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health for orchestrators; the model state decides SERVING.
	lis, err := net.Listen("tcp", cfg.Server.GRPCHealthAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCHealthAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	go reportHealth(ctx, healthServer, rt.Invoker.Loaded, rt.Acquirer.Available)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
		}
	}()
	go func() {
		logger.Info("statementd listening", "addr", httpServer.Addr, "grpc_health_addr", cfg.Server.GRPCHealthAddr,
			"model", rt.Invoker.ModelName(), "model_loaded", rt.Invoker.Loaded())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
}

// reportHealth mirrors readiness into the gRPC health service until ctx ends.
func reportHealth(ctx context.Context, hs *health.Server, modelLoaded, extractionAvailable func() bool) {
	set := func() {
		status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
		if modelLoaded() && extractionAvailable() {
			status = grpc_health_v1.HealthCheckResponse_SERVING
		}
		hs.SetServingStatus("", status)
	}
	set()
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			set()
		}
	}
}
