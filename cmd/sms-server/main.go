package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"uk.co.dudmesh.smsync/internal/boot"
	"uk.co.dudmesh.smsync/internal/handlers"
	"uk.co.dudmesh.smsync/internal/service/message"
	"uk.co.dudmesh.smsync/internal/watch"
)

type MessageService interface {
	handlers.MessageService
	Close() error
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	var messageService MessageService
	messageService, err = message.New(config)
	if err != nil {
		log.Fatalf("creating message service: %+v", err)
	}
	defer messageService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if result, err := messageService.Sync(ctx); err != nil {
		log.Errorf("initial sync: %+v", err)
	} else {
		log.Infof("initial sync: %d messages from %s", result.Messages, config.ProviderPath())
	}

	if config.WatchProvider || config.IsDevelopment() {
		w, err := watch.Provider(ctx, config.ProviderPath(), messageService, watch.DefaultDebounce)
		if err != nil {
			log.Fatalf("watching provider: %+v", err)
		}
		defer w.Close()
	}

	server := echo.New()
	server.Use(middleware.BodyLimit("10M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("smsync"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	if config.Auth.TokenSecret == "" {
		log.Warnf("AUTH_TOKEN_SECRET is not set, the API is unauthenticated")
	}
	handlers.Register(server, messageService, config.Auth.TokenSecret)

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Logger.Fatal(err)
	}
}
