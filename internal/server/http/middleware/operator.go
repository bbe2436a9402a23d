package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// OperatorIDContextKey is a gin context key for the till operator identifier.
	OperatorIDContextKey = "operatorID"
	operatorHeader       = "X-Operator-ID"
)

// Operator requires a positive numeric X-Operator-ID header and stores it in
// the gin context.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(operatorHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "invalid_operator",
				"msg":   operatorHeader + " header must be a positive integer",
			})
			return
		}
		c.Set(OperatorIDContextKey, id)
		c.Next()
	}
}
