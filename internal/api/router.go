package api

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docdesigner/internal/db"
	"docdesigner/internal/export"
	"docdesigner/internal/middleware"
	"docdesigner/internal/models"
	"docdesigner/internal/templates"
)

// Config carries the dependencies of the HTTP surface.
type Config struct {
	Database      *db.Database
	Store         *models.Store
	Library       templates.Library
	ExportOptions []export.Option
	Log           logrus.FieldLogger
}

// NewRouter configures HTTP routes for the application.
func NewRouter(cfg Config) *gin.Engine {
	log := cfg.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	store := cfg.Store
	if store == nil {
		store = models.NewStore()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log), middleware.CORS())

	server := &Server{
		Database:      cfg.Database,
		Store:         store,
		Library:       cfg.Library,
		ExportOptions: cfg.ExportOptions,
		Log:           log,
	}
	server.RegisterRoutes(r)
	return r
}
