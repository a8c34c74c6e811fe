package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// NotFound answers requests that matched no route
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		httputil.RespondWithMessage(c, http.StatusNotFound, "Route not found")
	}
}
