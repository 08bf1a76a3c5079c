package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mehfilhq/mehfil/internal/config"
	"github.com/mehfilhq/mehfil/internal/domain"
	"github.com/mehfilhq/mehfil/internal/infra/database"
	"github.com/mehfilhq/mehfil/internal/infra/repository"
	"github.com/mehfilhq/mehfil/internal/present/rest"
	"github.com/mehfilhq/mehfil/internal/realtime"
	"github.com/mehfilhq/mehfil/internal/service"
	"github.com/mehfilhq/mehfil/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up trace provider: " + err.Error())
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	thoughtRepo := repository.NewThoughtRepository(db)
	var feedRepo usecase.ThoughtRepository = thoughtRepo
	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		feedRepo = repository.NewCachedThoughtRepository(
			thoughtRepo,
			mc,
			conf.Feed.DefaultPageSize,
			time.Duration(conf.Feed.CacheTTLSeconds)*time.Second,
		)
	}

	feed := usecase.NewFeedUsecase(feedRepo, conf.Feed.DefaultPageSize, conf.Feed.MaxPageSize)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry)
	signalService := service.NewSignalService(rdb, conf.Feed.Channel)

	// bridge the redis channel into the global feed room
	go signalService.Listen(ctx, func(event domain.Event) {
		hub.Publish(realtime.RoomGlobalFeed, event)
	})

	handler := rest.NewHandler(conf.Server, hub, feed, signalService)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("mehfil"))
	}
	handler.RegisterRoutes(e)

	slog.Info(
		"Starting feed broker",
		slog.String("listen", conf.Server.ListenAddr),
		slog.Int("maxConnections", conf.Server.MaxConnections),
		slog.String("module", "main"),
	)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", "mehfil"),
		)),
	)
	otel.SetTracerProvider(tp)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error(
				"Failed to shut down trace provider",
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		}
	}, nil
}
