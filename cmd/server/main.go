package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/database"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/handlers"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/services"
)

func main() {
	cfg := config.LoadConfig()
	setupLogging(cfg)

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		logrus.WithError(err).Fatal("invalid rules configuration")
	}
	logrus.WithField("path", cfg.RulesPath).Info("rules loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server stays up without a database; sessions and reports are
	// disabled, live analysis still works.
	var db *database.DB
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err = database.Connect(dbCtx, cfg.DSN())
	dbCancel()
	if err != nil {
		logrus.WithError(err).WithField("dsn", cfg.DSNForLog()).
			Warn("database unavailable, continuing without persistence")
		db = nil
	}

	bridge := services.NewPoseBridge(cfg.DetectorCommand, cfg.DetectorModel)
	if err := bridge.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("starting pose detector failed")
	}

	h := handlers.New(db, bridge, rules, cfg.CORSOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", h.Register)
	mux.HandleFunc("/api/login", h.Login)
	mux.HandleFunc("/api/sessions", h.CreateSession)
	mux.HandleFunc("/api/sessions/close", h.CloseSession)
	mux.HandleFunc("/api/sessions/list", h.ListSessions)
	mux.HandleFunc("/api/sessions/report", h.SessionReport)
	mux.HandleFunc("/ws/analyze", h.AnalyzeWS)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/metrics", h.Metrics)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.HTTPPort).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("http shutdown failed")
	}
	bridge.Stop()
	db.Close()
	logrus.Info("shutdown complete")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
