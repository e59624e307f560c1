package response

import (
	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for successful calls.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorResponse is the envelope for failed calls.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     interface{} `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorBody is the content of ErrorResponse.Error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func requestID(c *gin.Context) string {
	if id, ok := c.Get("requestId"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// SendSuccess writes data in the success envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID(c),
	})
}

// SendError writes an error envelope and aborts the chain.
func SendError(c *gin.Context, status int, code, message string) {
	SendErrorWithDetails(c, status, code, message, "")
}

func SendErrorWithDetails(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		RequestID: requestID(c),
	})
}
