package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	reportdomain "github.com/datalysis-io/datalysis/internal/report/domain"
)

// ListReports returns the newest analysis summaries, most recent first.
func (s *Server) ListReports(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	summaries, err := s.reportSvc.List(c.Request.Context(), reportdomain.ListReportsRequest{Limit: limit})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": summaries})
}

func (s *Server) GetReport(c *gin.Context) {
	summary, err := s.reportSvc.GetByID(c.Request.Context(), reportdomain.GetReportRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
