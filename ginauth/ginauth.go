// Package ginauth adapts auth.Guard to gin.
package ginauth

import (
	"net/http"

	"github.com/Brandon689/reqauth/auth"
	"github.com/gin-gonic/gin"
)

// Require runs g's net/http middleware inside a gin chain. Requests it
// rejects are aborted; the rest continue with the principal in the request
// context.
func Require(g *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		g.Middleware(next).ServeHTTP(c.Writer, c.Request)

		// If the guard already answered, stop the gin chain
		if c.Writer.Written() {
			c.Abort()
		}
	}
}

// Principal returns the principal resolved for c's request.
func Principal(c *gin.Context) (auth.Principal, bool) {
	return auth.FromContext(c.Request.Context())
}
