package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/SlavaShagalov/hotel-admin/internal/attempts/delivery"
	"github.com/SlavaShagalov/hotel-admin/internal/attempts/repository"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
	"github.com/SlavaShagalov/hotel-admin/pkg/migrations"
	"github.com/SlavaShagalov/hotel-admin/pkg/statistics"
)

func main() {
	var configPath, migrationsPath string
	pflag.StringVarP(&configPath, "config", "c", "configs/statistics.yaml", "Config file path")
	pflag.StringVarP(&migrationsPath, "migrations", "", "migrations", "Migrations directory path")
	pflag.Parse()

	config, err := app.ReadLocalConfig(configPath)
	if err != nil {
		panic(err)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.Level(config.Logging.Level)}))

	db, err := sqlx.Connect(config.DB.DriverName, config.DB.ConnectionString)
	if err != nil {
		panic(err)
	}

	err = migrations.Do(config.DB.ConnectionString, migrationsPath, logger)
	if err != nil {
		panic(err)
	}

	repo := repository.NewSqlxRepository(db, logger)

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: config.Kafka.Addresses,
		Topic:   config.Kafka.StatTopic,
	})

	stat := statistics.NewKafkaStatistics(kafkaReader, nil, logger, repo)

	registry := prometheus.NewRegistry()
	webApp := app.NewFiberApp(
		config.Web,
		delivery.New(repo, app.NewTokenValidator(config.Session.JWTSecret), logger),
		logger,
		app.NewMetrics(registry).Middleware(),
	)
	webApp.Handle(http.MethodGet, "/metrics", app.MetricsHandler(registry))

	go func() {
		if err := webApp.Start(); err != nil {
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-quit
		cancel()
	}()

	for ctx.Err() == nil {
		err = stat.SaveAttempt(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Error(err.Error())
		}
	}

	const shutdownTimeout = 10 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err = multierr.Combine(
		webApp.Shutdown(shutdownCtx),
		kafkaReader.Close(),
		db.Close(),
	)
	if err != nil {
		logger.Error("shutdown statistics", slog.String("error", err.Error()))
	}
}
