package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
)

// Upload accepts a multipart CSV in the "file" field and returns the full
// analysis payload.
func (s *Server) Upload(c *gin.Context) {
	limits := s.analysis.Get().Limits

	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, ErrMissingFile)
		return
	}

	if !isCSV(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		AbortWithError(c, ErrInvalidFileType)
		return
	}
	if fileHeader.Size > limits.MaxUploadBytes {
		AbortWithError(c, ingestdomain.ErrFileTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	// Hard cap the read too: the multipart size header is client-supplied.
	data, err := io.ReadAll(io.LimitReader(f, limits.MaxUploadBytes+1))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if int64(len(data)) > limits.MaxUploadBytes {
		AbortWithError(c, ingestdomain.ErrFileTooLarge)
		return
	}

	report, err := s.ingestSvc.Analyze(c.Request.Context(), ingestdomain.AnalyzeRequest{
		Filename: filepath.Base(fileHeader.Filename),
		Data:     data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func isCSV(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "text/csv", "application/csv":
		return true
	}
	return false
}
