package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docdesigner/internal/api"
	"docdesigner/internal/config"
	"docdesigner/internal/db"
	"docdesigner/internal/models"
	"docdesigner/internal/templates"
)

func main() {
	configPath := flag.String("config", os.Getenv("DESIGNER_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg.Log, os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var database *db.Database
	var library templates.Library
	switch cfg.Storage {
	case config.StoragePostgres:
		database, err = db.Connect(ctx, cfg.Database)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.WithError(err).Warn("database close error")
			}
		}()
		library, err = templates.NewPostgresLibrary(ctx, database.Pool, log)
	default:
		library, err = templates.NewFileLibrary(cfg.TemplateDir, log)
	}
	if err != nil {
		log.WithError(err).Fatal("template library")
	}

	store := models.NewStore(models.WithHistoryLimit(cfg.HistoryLimit))
	router := api.NewRouter(api.Config{Database: database, Store: store, Library: library, Log: log})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "storage": cfg.Storage}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}
}
