package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/followuphq/followup-golang/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func (h *Handlers) log() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

// currentUserID returns the caller's ID set by the auth middleware. Every
// protected handler scopes its queries to this value and nothing else.
func currentUserID(c *gin.Context) int64 {
	raw, _ := c.Get("userID")
	return raw.(int64)
}

// todayUTC is the calendar day all selection predicates compare against.
func todayUTC() string {
	return time.Now().UTC().Format(models.DateLayout)
}

// serverError logs the underlying failure and sends a generic 500. The raw
// error never reaches the client.
func (h *Handlers) serverError(c *gin.Context, msg string, err error) {
	h.log().Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
