package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docdesigner/internal/models"
)

type placementRequest struct {
	ParentID string `json:"parentId"`
	Index    int    `json:"index"`
	// Cell selects a table cell column; nil targets a columns element.
	Cell     *int `json:"cell"`
	Position *int `json:"position"`
}

func (p placementRequest) placement() models.Placement {
	var out models.Placement
	switch {
	case strings.TrimSpace(p.ParentID) == "":
		out = models.AtRoot()
	case p.Cell != nil:
		out = models.InCell(p.ParentID, p.Index, *p.Cell)
	default:
		out = models.InColumn(p.ParentID, p.Index)
	}
	if p.Position != nil {
		out = out.At(*p.Position)
	}
	return out
}

// requireElement aborts with 404 when id is not in the current document.
func (s *Server) requireElement(c *gin.Context, id string) bool {
	if _, ok := s.Store.Document().Element(id); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "element_not_found"})
		return false
	}
	return true
}

func (s *Server) handleGetDocument(c *gin.Context) {
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleLoadDocument(c *gin.Context) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		s.abortWithError(c, models.ErrDocumentIncomplete)
		return
	}
	s.Store.LoadDocument(doc)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleResetDocument(c *gin.Context) {
	s.Store.ResetDocument()
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleUpdatePage(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if _, err := s.Store.UpdatePage(fields); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleDangling(c *gin.Context) {
	refs := s.Store.Document().DanglingReferences()
	if refs == nil {
		refs = []models.Reference{}
	}
	c.JSON(http.StatusOK, gin.H{"items": refs})
}

type selectRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.SelectElement(req.ID)
	c.JSON(http.StatusOK, gin.H{"selected": s.Store.Selected()})
}

func (s *Server) handleClearSelection(c *gin.Context) {
	s.Store.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"selected": ""})
}

type addElementRequest struct {
	Type string `json:"type" binding:"required"`
	placementRequest
}

func (s *Server) handleAddElement(c *gin.Context) {
	var req addElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	typ, ok := models.ParseElementType(req.Type)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown_element_type"})
		return
	}
	id, _ := s.Store.AddElement(typ, req.placement())
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_placement"})
		return
	}
	s.respondState(c, http.StatusCreated, id)
}

func (s *Server) handleUpdateElement(c *gin.Context) {
	id := c.Param("id")
	if !s.requireElement(c, id) {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if _, err := s.Store.UpdateElement(id, fields); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.respondState(c, http.StatusOK, "")
}

type styleRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

func (s *Server) handleUpdateStyle(c *gin.Context) {
	id := c.Param("id")
	if !s.requireElement(c, id) {
		return
	}
	var req styleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if _, err := s.Store.UpdateElementStyle(id, req.Key, req.Value); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleRemoveElement(c *gin.Context) {
	id := c.Param("id")
	if !s.requireElement(c, id) {
		return
	}
	s.Store.RemoveElement(id)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleCloneElement(c *gin.Context) {
	id := c.Param("id")
	if !s.requireElement(c, id) {
		return
	}
	cloneID, _ := s.Store.CloneElement(id)
	s.respondState(c, http.StatusCreated, cloneID)
}

func (s *Server) handleMoveElement(c *gin.Context) {
	id := c.Param("id")
	if !s.requireElement(c, id) {
		return
	}
	var req placementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.MoveElement(id, req.placement())
	s.respondState(c, http.StatusOK, "")
}

type reorderRequest struct {
	ActiveID string `json:"activeId" binding:"required"`
	OverID   string `json:"overId" binding:"required"`
}

func (s *Server) handleReorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.ReorderElements(req.ActiveID, req.OverID)
	s.respondState(c, http.StatusOK, "")
}
