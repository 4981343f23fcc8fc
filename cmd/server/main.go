package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/cohort-migrator/internal/api/grpc/context"
	"github.com/dtroode/cohort-migrator/internal/api/grpc/router"
	grpcServer "github.com/dtroode/cohort-migrator/internal/api/grpc/server"
	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/config"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/monitor"
	"github.com/dtroode/cohort-migrator/internal/server"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const registryCheckInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", "error", err)
	}
	defer a.Close()

	r := router.New(a.Migration, a.Rollback, a.Monitor, a.Emergency, a.Tokens, grpcctx.NewManager(), logger)
	s := r.Register()
	reflection.Register(s)

	srv := grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.GRPC.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)
	go func() {
		defer wg.Done()
		a.WatchRegistry(ctx, registryCheckInterval, monitor.ScopeGRPC, func() []string {
			return router.Methods(s)
		})
	}()

	logAppVersion()
	logger.Info("cohort migration configured",
		"cohort", cfg.Migration.Cohort,
		"enabled", cfg.Migration.Enabled,
		"lock_backend", cfg.Migration.LockBackend,
		"object_storage", cfg.Storage.Enabled)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
