package util

import (
	"github.com/gin-gonic/gin"
)

// Error kinds reported in the "kind" field of error responses.
const (
	KindValidation   = "validation"
	KindPageRange    = "page_range"
	KindPagesUnknown = "pages_unknown"
	KindDiscovery    = "discovery"
	KindExtraction   = "extraction"
	KindCacheRead    = "cache_read"
	KindNotFound     = "not_found"
	KindBusy         = "busy"
	KindRateLimited  = "rate_limited"
	KindUnauthorized = "unauthorized"
	KindInternal     = "internal"
)

// ErrorResponse aborts with a JSON error. The underlying error message is
// always included so the user sees what actually failed.
func ErrorResponse(c *gin.Context, statusCode int, kind, userMessage string, err error) {
	response := gin.H{
		"success": false,
		"kind":    kind,
		"message": userMessage,
	}
	if err != nil {
		response["error"] = err.Error()
	} else {
		response["error"] = userMessage
	}

	c.AbortWithStatusJSON(statusCode, response)
}
