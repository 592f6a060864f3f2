package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"

	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
	"github.com/SlavaShagalov/hotel-admin/internal/register/api"
	"github.com/SlavaShagalov/hotel-admin/internal/register/delivery"
	"github.com/SlavaShagalov/hotel-admin/internal/register/usecase"
	"github.com/SlavaShagalov/hotel-admin/pkg/statistics"
)

type WebApp interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func startApp(webApp WebApp, config app.Config, logger *slog.Logger) {
	logger.Debug(fmt.Sprintf("web app starts at %s", config.Web.Host+":"+config.Web.Port))

	go func() {
		err := webApp.Start()
		if err != nil {
			panic(err)
		}
	}()
}

func shutdownApp(webApp WebApp, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Debug("shutdown web app ...")

	const shutdownTimeout = time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := webApp.Shutdown(ctx)
	if err != nil {
		panic(err)
	}

	logger.Debug("web app exited")
}

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "configs/admin.yaml", "Config file path")
	pflag.Parse()

	config, err := app.ReadLocalConfig(configPath)
	if err != nil {
		panic(err)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.Level(config.Logging.Level)}))

	kafkaStatWriter := &kafka.Writer{
		Addr:                   kafka.TCP(config.Kafka.Addresses...),
		Topic:                  config.Kafka.StatTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("publish registration attempts",
					slog.Int("count", len(messages)),
					slog.String("error", err.Error()),
				)
			}
		},
	}

	stat := statistics.NewKafkaStatistics(nil, kafkaStatWriter, logger, nil)

	registrationAPI := api.New(
		config.RegistrationAPIAddr,
		&http.Client{Timeout: config.RequestTimeout},
		config.MaxRequestFails,
		logger,
	)

	clock := clockwork.NewRealClock()
	sessions := delivery.NewSessions(func(navigator usecase.Navigator) *usecase.FormController {
		return usecase.NewFormController(
			registrationAPI,
			app.SessionAuthorizer{},
			navigator,
			clock,
			logger,
			usecase.WithMessageTTL(config.Session.MessageTTL),
			usecase.WithNavigationDelay(config.Session.NavigationDelay),
		)
	}, clock, config.Session.TTL, config.Session.MaxSessions)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, config.Session.SweepInterval)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := app.NewMetrics(registry)

	webApp := app.NewFiberApp(
		config.Web,
		delivery.New(sessions, stat, metrics, clock, logger),
		logger,
		metrics.Middleware(),
		app.NewAuth(app.NewTokenValidator(config.Session.JWTSecret), logger),
	)
	webApp.Handle(http.MethodGet, "/metrics", app.MetricsHandler(registry))

	startApp(webApp, config, logger)
	shutdownApp(webApp, logger)

	stopSweep()
	sessions.Close()
	if err = kafkaStatWriter.Close(); err != nil {
		logger.Error("close kafka writer", slog.String("error", err.Error()))
	}
}
