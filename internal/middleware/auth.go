package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// Claims represents the merchant JWT claims; the owner id is the subject
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// OwnerID returns the explicit user_id claim or, when absent, the subject
func (c *Claims) OwnerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

var errMissingToken = errors.New("missing token")

// AuthMiddleware validates merchant JWT tokens
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, jwtSecret)
		if err != nil {
			message := "Token inválido ou expirado"
			if errors.Is(err, errMissingToken) {
				message = "Autenticação necessária"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   message,
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and never rejects
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseBearer(c, jwtSecret); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// GetUserID returns the authenticated owner id, empty when unauthenticated
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.OwnerID())
	c.Set(ContextUserEmail, claims.Email)
}

func parseBearer(c *gin.Context, jwtSecret string) (*Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errMissingToken
	}

	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return nil, fmt.Errorf("authorization header must be in format: Bearer <token>")
	}

	token, err := jwt.ParseWithClaims(tokenParts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.OwnerID() == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
