package api

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docdesigner/internal/db"
	"docdesigner/internal/export"
	"docdesigner/internal/models"
	"docdesigner/internal/templates"
)

// Server wires handlers to the document store and template library.
type Server struct {
	Database *db.Database
	Store    *models.Store
	Library  templates.Library
	// ExportOptions apply to every export before per-request options.
	ExportOptions []export.Option
	Log           logrus.FieldLogger
}

// RegisterRoutes attaches handlers to the gin engine.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/document", s.handleGetDocument)
		v1.PUT("/document", s.handleLoadDocument)
		v1.DELETE("/document", s.handleResetDocument)
		v1.PATCH("/document/page", s.handleUpdatePage)
		v1.GET("/document/dangling", s.handleDangling)
		v1.POST("/document/export", s.handleExport)

		v1.POST("/selection", s.handleSelect)
		v1.DELETE("/selection", s.handleClearSelection)

		v1.POST("/elements", s.handleAddElement)
		v1.POST("/elements/reorder", s.handleReorder)
		v1.PATCH("/elements/:id", s.handleUpdateElement)
		v1.PATCH("/elements/:id/style", s.handleUpdateStyle)
		v1.DELETE("/elements/:id", s.handleRemoveElement)
		v1.POST("/elements/:id/clone", s.handleCloneElement)
		v1.POST("/elements/:id/move", s.handleMoveElement)

		v1.POST("/tables/:id/rows", s.handleInsertRow)
		v1.DELETE("/tables/:id/rows/:index", s.handleRemoveRow)
		v1.POST("/tables/:id/columns", s.handleInsertColumn)
		v1.DELETE("/tables/:id/columns/:index", s.handleRemoveColumn)
		v1.PUT("/tables/:id/widths", s.handleUpdateWidths)
		v1.POST("/tables/:id/merge", s.handleMergeCells)
		v1.POST("/tables/:id/split", s.handleSplitCell)
		v1.PUT("/tables/:id/cells/:row/:col/background", s.handleCellBackground)
		v1.POST("/tables/:id/import", s.handleImportTable)
		v1.GET("/tables/:id/export", s.handleExportTable)

		v1.POST("/history/undo", s.handleUndo)
		v1.POST("/history/redo", s.handleRedo)
		v1.GET("/history", s.handleHistoryStatus)

		v1.GET("/templates", s.handleListTemplates)
		v1.POST("/templates", s.handleSaveTemplate)
		v1.POST("/templates/import", s.handleImportTemplate)
		v1.GET("/templates/:id", s.handleGetTemplate)
		v1.POST("/templates/:id/load", s.handleLoadTemplate)
		v1.DELETE("/templates/:id", s.handleDeleteTemplate)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	payload := gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)}
	if s.Database != nil {
		if err := s.Database.PingContext(c.Request.Context()); err != nil {
			payload["database"] = gin.H{"status": "unavailable", "error": err.Error()}
		} else {
			payload["database"] = gin.H{"status": "ok"}
		}
	}
	c.JSON(http.StatusOK, payload)
}

type historyStatus struct {
	Undo      bool `json:"undo"`
	Redo      bool `json:"redo"`
	UndoSteps int  `json:"undoSteps"`
	RedoSteps int  `json:"redoSteps"`
}

type documentResponse struct {
	Document models.Document `json:"document"`
	Selected string          `json:"selected"`
	History  historyStatus   `json:"history"`
	ElementID string `json:"elementId,omitempty"`
}

func newHistoryStatus(undo, redo int) historyStatus {
	return historyStatus{Undo: undo > 0, Redo: redo > 0, UndoSteps: undo, RedoSteps: redo}
}

// respondState writes the store state. elementID names the element an add or
// clone created.
func (s *Server) respondState(c *gin.Context, status int, elementID string) {
	st := s.Store.State()
	c.JSON(status, documentResponse{
		Document:  st.Document,
		Selected:  st.Selected,
		History:   newHistoryStatus(st.UndoSteps, st.RedoSteps),
		ElementID: elementID,
	})
}

func (s *Server) handleUndo(c *gin.Context) {
	if err := s.Store.Undo(); err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleRedo(c *gin.Context) {
	if err := s.Store.Redo(); err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleHistoryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, newHistoryStatus(s.Store.HistoryDepth()))
}

type exportRequest struct {
	Variables map[string]string `json:"variables"`
	RasterQR  bool              `json:"rasterQr"`
}

// handleExport returns the rendering-engine definition of the current document.
// The body is optional.
func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
			return
		}
	}
	opts := slices.Clone(s.ExportOptions)
	opts = append(opts, export.WithLogger(s.Log), export.WithRasterQR(req.RasterQR))
	if len(req.Variables) > 0 {
		opts = append(opts, export.WithVariables(req.Variables))
	}
	c.JSON(http.StatusOK, export.Export(s.Store.Document(), opts...))
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidFields),
		errors.Is(err, models.ErrInvalidStyleValue),
		errors.Is(err, models.ErrInvalidTemplate),
		errors.Is(err, models.ErrDocumentIncomplete),
		errors.Is(err, templates.ErrTemplateIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorCode strips wrapped detail from known errors.
func errorCode(err error) string {
	for _, known := range []error{
		templates.ErrTemplateNotFound,
		templates.ErrTemplateIDRequired,
		models.ErrInvalidFields,
		models.ErrInvalidStyleValue,
		models.ErrInvalidTemplate,
		models.ErrDocumentIncomplete,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		s.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorCode(err)})
}
