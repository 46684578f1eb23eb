package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-compensation-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-compensation-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-compensation-go/internal/repository/postgresql"
	compensationService "github.com/cmlabs-hris/hris-compensation-go/internal/service/compensation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	zlog, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		log.Fatal("Error building logger: ", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}
	defer db.Close()

	structureRepo := postgresql.NewStructureRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	compensationSvc := compensationService.NewCompensationService(
		transactor,
		structureRepo,
		employeeRepo,
		compensationService.Options{
			Defaults:   cfg.Compensation.Defaults(),
			Tolerance:  cfg.Compensation.Tolerance,
			MaxPercent: cfg.Compensation.MaxPercent,
		},
		zlog,
	)

	compensationHandler := appHTTP.NewCompensationHandler(compensationSvc)
	commitLimiter := middleware.NewKeyedRateLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerSecond),
		cfg.RateLimit.Burst,
		cfg.RateLimit.TTL,
	)

	router := appHTTP.NewRouter(JWTService, compensationHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		CommitLimiter:  commitLimiter,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info("Server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
