package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/hris-compensation-go/internal/config"
	"github.com/cmlabs-hris/hris-compensation-go/internal/messaging/kafka"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-compensation-go/internal/repository/postgresql"
	compensationService "github.com/cmlabs-hris/hris-compensation-go/internal/service/compensation"
	"go.uber.org/zap"
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

	if len(cfg.Kafka.Brokers) == 0 {
		zlog.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}
	defer db.Close()

	compensationSvc := compensationService.NewCompensationService(
		postgresql.NewTransactor(db),
		postgresql.NewStructureRepository(db),
		postgresql.NewEmployeeRepository(db),
		compensationService.Options{
			Defaults:   cfg.Compensation.Defaults(),
			Tolerance:  cfg.Compensation.Tolerance,
			MaxPercent: cfg.Compensation.MaxPercent,
		},
		zlog,
	)

	reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	defer reader.Close()

	zlog.Info("Consuming employee lifecycle events",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)
	kafka.NewLifecycleConsumer(reader, compensationSvc, zlog).Run(ctx)
	zlog.Info("Consumer shut down")
}
