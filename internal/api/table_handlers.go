package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docdesigner/internal/models"
	"docdesigner/internal/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// requireTable aborts with 404 unless id names a table element.
func (s *Server) requireTable(c *gin.Context, id string) (*models.TableElement, bool) {
	el, ok := s.Store.Document().Element(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "element_not_found"})
		return nil, false
	}
	table, ok := el.(*models.TableElement)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "not_a_table"})
		return nil, false
	}
	return table, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_" + name})
		return 0, false
	}
	return value, true
}

type insertRequest struct {
	At *int `json:"at"`
}

func bindInsert(c *gin.Context) (int, bool) {
	var req insertRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
			return 0, false
		}
	}
	if req.At == nil {
		return -1, true
	}
	return *req.At, true
}

func (s *Server) handleInsertRow(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	at, ok := bindInsert(c)
	if !ok {
		return
	}
	s.Store.InsertTableRow(id, at)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleInsertColumn(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	at, ok := bindInsert(c)
	if !ok {
		return
	}
	s.Store.InsertTableColumn(id, at)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleRemoveRow(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	s.Store.RemoveTableRow(id, index)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleRemoveColumn(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	s.Store.RemoveTableColumn(id, index)
	s.respondState(c, http.StatusOK, "")
}

type widthsRequest struct {
	Widths []models.Dimension `json:"widths"`
}

func (s *Server) handleUpdateWidths(c *gin.Context) {
	id := c.Param("id")
	table, ok := s.requireTable(c, id)
	if !ok {
		return
	}
	var req widthsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if len(req.Widths) != table.Cols {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "width_count_mismatch"})
		return
	}
	s.Store.UpdateTableWidths(id, req.Widths)
	s.respondState(c, http.StatusOK, "")
}

type mergeRequest struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	RowSpan int `json:"rowSpan"`
	ColSpan int `json:"colSpan"`
}

func (s *Server) handleMergeCells(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.MergeCells(id, req.Row, req.Col, req.RowSpan, req.ColSpan)
	s.respondState(c, http.StatusOK, "")
}

type cellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *Server) handleSplitCell(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.SplitCell(id, req.Row, req.Col)
	s.respondState(c, http.StatusOK, "")
}

type backgroundRequest struct {
	Color string `json:"color"`
}

func (s *Server) handleCellBackground(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	row, ok := intParam(c, "row")
	if !ok {
		return
	}
	col, ok := intParam(c, "col")
	if !ok {
		return
	}
	var req backgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	s.Store.SetCellBackground(id, row, col, req.Color)
	s.respondState(c, http.StatusOK, "")
}

// handleImportTable replaces a table body with the cells of an uploaded
// workbook sheet.
func (s *Server) handleImportTable(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.requireTable(c, id); !ok {
		return
	}
	upload, ok := readWorkbookUpload(c)
	if !ok {
		return
	}
	grid, err := xlsx.ReadGrid(upload.Data, upload.Sheet)
	if err != nil {
		s.Log.WithError(err).WithField("table", id).Warn("workbook import rejected")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_workbook"})
		return
	}
	if len(grid) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "empty_sheet"})
		return
	}
	s.Store.ImportTableGrid(id, grid)
	s.respondState(c, http.StatusOK, "")
}

func (s *Server) handleExportTable(c *gin.Context) {
	id := c.Param("id")
	table, ok := s.requireTable(c, id)
	if !ok {
		return
	}
	grid, merges, _ := s.Store.Document().TableText(id)
	data, err := xlsx.WriteTable(id, grid, merges, table.HeaderRow)
	if err != nil {
		s.Log.WithError(err).WithField("table", id).Error("table export failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", xlsx.SheetName(id, 0)))
	c.Data(http.StatusOK, xlsxContentType, data)
}
