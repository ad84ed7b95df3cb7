// Command main is the entry point for the Blogicum server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/observability"
	"blogicum/internal/server"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

const appVersion = "1.0.0"

func printBanner(cfg *config.Config) {
	fmt.Println(color.YellowString(" ____  _             _                    \n| __ )| | ___   __ _(_) ___ _   _ _ __ ___  \n|  _ \\| |/ _ \\ / _` | |/ __| | | | '_ ` _ \\ \n| |_) | | (_) | (_| | | (__| |_| | | | | | |\n|____/|_|\\___/ \\__, |_|\\___|\\__,_|_| |_| |_|\n               |___/"))
	fmt.Printf("%s v%s (%s)\n", color.New(color.FgHiYellow).Add(color.Bold).Sprint("Blogicum"), appVersion, cfg.Env)
	color.HiBlack("=====================================================\n")
}

func main() {
	// A local .env only fills variables the environment does not set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env, os.Stdout)
	printBanner(cfg)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    observability.ServiceName,
		ServiceVersion: appVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	app := srv.App()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server resource shutdown error", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", "error", err)
		}
	}()

	middleware.Logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
