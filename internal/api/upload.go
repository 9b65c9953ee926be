package api

import (
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20

var errUploadTooLarge = errors.New("file_too_large")

type workbookUpload struct {
	Data  []byte
	Sheet string
}

type workbookRequest struct {
	Data  string `json:"data" binding:"required"`
	Sheet string `json:"sheet"`
}

// readWorkbookUpload accepts either a multipart "file" field or a JSON body
// with base64 data. It aborts the request on failure.
func readWorkbookUpload(c *gin.Context) (workbookUpload, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil || header == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file_required"})
			return workbookUpload{}, false
		}
		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unsupported_file"})
			return workbookUpload{}, false
		}
		data, err := readUploadedFile(header)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, errUploadTooLarge) {
				status = http.StatusBadRequest
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return workbookUpload{}, false
		}
		return workbookUpload{Data: data, Sheet: c.PostForm("sheet")}, true
	}

	var req workbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return workbookUpload{}, false
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Data))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_base64"})
		return workbookUpload{}, false
	}
	if len(data) > maxUploadSize {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errUploadTooLarge.Error()})
		return workbookUpload{}, false
	}
	return workbookUpload{Data: data, Sheet: req.Sheet}, true
}

// readUploadedFile reads multipart content into memory.
func readUploadedFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxUploadSize {
		return nil, errUploadTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadSize {
		return nil, errUploadTooLarge
	}
	return data, nil
}
