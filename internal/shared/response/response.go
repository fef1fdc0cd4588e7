package response

import (
	"github.com/gin-gonic/gin"
)

// ApiEnvelope is the body shape every JSON endpoint writes. Lists are
// returned whole (the portal cache replaces its contents on each load),
// so there is no pagination metadata.
type ApiEnvelope struct {
	Ok    bool `json:"ok"`
	Data  any  `json:"data,omitempty"`
	Error any  `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: map[string]any{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}
