package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyClientID is the Gin context key for the calling client's id.
	ContextKeyClientID = "client_id"
	HeaderClientID     = "X-Client-ID"

	maxClientIDLength = 64
)

// ClientID identifies an anonymous calculator client. The id comes from the
// X-Client-ID header, or the client_id query parameter for websocket
// upgrades. A fresh uuid is issued when neither is usable, and the id in
// effect is always echoed back so the client can keep it.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderClientID)
		if id == "" {
			id = c.Query("client_id")
		}
		if id == "" || len(id) > maxClientIDLength {
			id = uuid.New().String()
		}
		c.Set(ContextKeyClientID, id)
		c.Header(HeaderClientID, id)
		c.Next()
	}
}

// GetClientID returns the id set by ClientID, or "".
func GetClientID(c *gin.Context) string {
	return c.GetString(ContextKeyClientID)
}
