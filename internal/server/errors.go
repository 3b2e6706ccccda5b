package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
	reportdomain "github.com/datalysis-io/datalysis/internal/report/domain"
	"github.com/datalysis-io/datalysis/internal/schema"
)

// detailResponse is the only error shape this API speaks.
type detailResponse struct {
	Detail string `json:"detail"`
}

var (
	ErrMissingFile     = errors.New("missing_file")
	ErrInvalidFileType = errors.New("invalid_file_type")
	ErrInvalidLimit    = errors.New("invalid_limit")
)

// ErrorHandlingMiddleware converts collected handler errors into the
// {"detail": ...} contract once the handler chain finishes.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, detail := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, detailResponse{Detail: detail})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest, "No file provided. Upload a CSV in the 'file' field."
	case errors.Is(err, ErrInvalidFileType):
		return http.StatusBadRequest, "File must be a CSV"
	case errors.Is(err, ingestdomain.ErrFileTooLarge):
		return http.StatusBadRequest, "File too large. Maximum size is 10MB."
	case errors.Is(err, ingestdomain.ErrEmptyFile):
		return http.StatusUnprocessableEntity, "CSV file is empty"
	case errors.Is(err, ingestdomain.ErrMalformedCSV):
		return http.StatusUnprocessableEntity, "Unable to parse CSV file"
	case errors.Is(err, ingestdomain.ErrTooManyRows):
		return http.StatusUnprocessableEntity, "CSV has too many rows to analyze"
	case errors.Is(err, schema.ErrNoAmountColumn):
		return http.StatusUnprocessableEntity, "CSV has no recognizable amount column"
	case errors.Is(err, ingestdomain.ErrTimeout):
		return http.StatusGatewayTimeout, "Analysis timed out"
	case errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest, "Invalid limit parameter"
	case errors.Is(err, reportdomain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid report id"
	case errors.Is(err, reportdomain.ErrNotFound):
		return http.StatusNotFound, "Report not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// classifyErrorForLog labels collected errors for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusInternalServerError:
		return "internal_error", "internal"
	case status == http.StatusGatewayTimeout:
		return "timeout", "processing_timeout"
	case status >= http.StatusBadRequest:
		return "validation_error", err.Error()
	default:
		return "", ""
	}
}
