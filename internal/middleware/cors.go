package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the configured origins plus local dev origins, with credentials.
// Requests from other origins are refused with 403.
func CORS(extra []string) gin.HandlerFunc {
	seen := make(map[string]bool)
	origins := make([]string, 0, len(devOrigins)+len(extra))
	for _, o := range append(append([]string{}, devOrigins...), extra...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}

	cc := cors.DefaultConfig()
	cc.AllowOrigins = origins
	cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Accept", "X-Requested-With", RequestIDHeader)
	cc.ExposeHeaders = []string{RequestIDHeader}
	cc.AllowCredentials = true
	cc.MaxAge = 10 * time.Minute
	return cors.New(cc)
}
