package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speakwise/internal/http/middlewares"
)

// Error responses are a flat {"error": message} envelope; binding failures
// add a "details" payload with per-field breakdowns. The request id rides
// along when one was assigned.
func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	body := gin.H{"error": message}

	if details != nil {
		body["details"] = details
	}

	if id := requestIDFrom(ctx); id != "" {
		body["requestId"] = id
	}

	ctx.JSON(status, body)
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

// RespondInternal surfaces the underlying message as-is; nothing upstream
// sanitizes it.
func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}
