package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diamondnova-backend/pkg/jwt"
)

// AuthMiddleware - Middleware xác thực JWT token.
// Session identity là opaque account id: handler chỉ thấy accountID trong
// context, không bao giờ đọc global/localStorage state.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		// 3. Verify và parse JWT (chỉ chấp nhận access token)
		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// 4. Convert account id sang uuid.UUID
		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid account ID in token"})
			c.Abort()
			return
		}

		// 5. Set identity vào context
		c.Set("accountID", accountID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// AccountIDFromContext lấy accountID đã được AuthMiddleware set
func AccountIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("accountID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
