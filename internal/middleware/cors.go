package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser clients from any origin. Preflight OPTIONS requests
// are answered with an empty body.
func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"authorization", "x-client-info", "apikey", "content-type"},
	}
	return cors.New(cfg)
}
