package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs each request's method, path, status and latency with the
// same log.Printf-with-prefix style the rest of the repo uses.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		log.Printf("[api] %s %s %d (%v)", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
