package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "authActor"

// Middleware mengubah bearer token menjadi Actor di gin context.
// Handler mengambilnya lewat ActorFromContext dan meneruskannya
// secara eksplisit ke service layer.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed Authorization header"})
			return
		}

		actor, err := ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (Actor, bool) {
	raw, exists := c.Get(actorContextKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := raw.(Actor)
	return actor, ok
}
