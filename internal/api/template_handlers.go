package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docdesigner/internal/models"
)

func (s *Server) requireLibrary(c *gin.Context) bool {
	if s.Library == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "library_not_configured"})
		return false
	}
	return true
}

func (s *Server) handleListTemplates(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	items, err := s.Library.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type saveTemplateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Locale      string `json:"locale"`
	Thumbnail   string `json:"thumbnail"`
}

// handleSaveTemplate stores the current document. Passing the id of an
// existing template overwrites it and bumps its revision.
func (s *Server) handleSaveTemplate(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	locale, err := models.CanonicalLocale(req.Locale)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_locale"})
		return
	}
	tpl := models.NewTemplate(req.Name, s.Store.Document())
	if id := strings.TrimSpace(req.ID); id != "" {
		tpl.Metadata.ID = id
	}
	tpl.Metadata.Description = req.Description
	tpl.Metadata.Category = req.Category
	tpl.Metadata.Locale = locale
	tpl.Metadata.Thumbnail = req.Thumbnail

	stored, err := s.Library.Save(c.Request.Context(), tpl)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"metadata": stored.Metadata})
}

// handleImportTemplate validates a template payload and stores it as sent.
func (s *Server) handleImportTemplate(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadSize))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	tpl, err := models.ParseTemplate(body)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	stored, err := s.Library.Save(c.Request.Context(), tpl)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"metadata": stored.Metadata})
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	tpl, err := s.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) handleLoadTemplate(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	tpl, err := s.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.Store.LoadTemplate(tpl)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	if !s.requireLibrary(c) {
		return
	}
	if err := s.Library.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
