package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/response"
)

// Recovery turns a panic in a handler into a 500 envelope. Nothing is
// written when the handler already started the response, e.g. a stream.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("Panic recovered",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Stack("stacktrace"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
		}()

		c.Next()
	}
}
