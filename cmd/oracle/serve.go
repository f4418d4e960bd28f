package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/boat-oracle/internal/events"
	"github.com/yourusername/boat-oracle/internal/health"
	"github.com/yourusername/boat-oracle/internal/metrics"
	"github.com/yourusername/boat-oracle/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction service: NATS requests, health, metrics and scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService()
	},
}

func runService() error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Boat Oracle service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher, subjects, closeBus, err := connectPublisher()
	if err != nil {
		return err
	}
	defer closeBus()

	c, err := buildComponents(publisher, subjects)
	if err != nil {
		return err
	}

	checks := []health.Checker{c.estimator}
	if bus, ok := publisher.(*events.NATSBus); ok {
		checks = append(checks, bus)
		if cfg.Events.ServeRequests {
			if err := c.service.Serve(bus); err != nil {
				return err
			}
		}
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Checks:      checks,
	}
	sharedMetrics := cfg.Metrics.Enabled && strconv.Itoa(cfg.Metrics.Port) == cfg.Health.Port
	if sharedMetrics {
		healthCfg.Metrics = metrics.Handler()
	}

	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer = health.NewServer(healthCfg)
		if err := healthServer.Start(ctx); err != nil {
			return err
		}
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled && !sharedMetrics {
		metricsServer = startMetricsServer()
	}

	sched := scheduler.NewScheduler(appLog)
	if cfg.ML.ReloadSchedule != "" {
		if err := sched.ScheduleModelReload(cfg.ML.ReloadSchedule, c.estimator); err != nil {
			return err
		}
	}
	if c.cache != nil && cfg.Magi.CacheResetSchedule != "" {
		if err := sched.ScheduleCacheReset(cfg.Magi.CacheResetSchedule, c.cache); err != nil {
			return err
		}
	}
	if len(sched.Entries()) > 0 {
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Error("Error stopping scheduler")
			}
		}()
	}

	if healthServer != nil {
		healthServer.SetReady(true)
	}
	appLog.WithFields(logrus.Fields{
		"events":         cfg.Events.Enabled,
		"serve_requests": cfg.Events.ServeRequests,
		"health_port":    cfg.Health.Port,
		"metrics":        cfg.Metrics.Enabled,
	}).Info("Boat Oracle service running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	if healthServer != nil {
		healthServer.SetReady(false)
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error stopping metrics server")
		}
	}

	appLog.Info("Boat Oracle service shut down")
	return nil
}

func startMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()
	return srv
}
