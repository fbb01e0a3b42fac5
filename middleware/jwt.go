package middleware

import (
	"fmt"
	"strings"
	"time"

	"coursehub/apperrors"
	"coursehub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const principalKey = "principal"

// GenerateJWT signs an access token for the principal, valid for ttl.
func GenerateJWT(secret string, p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": p.UserID,
		"role":   p.Role,
		"email":  p.Email,
		"name":   p.Name,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// NewJWTMiddleware rejects requests without a valid bearer token and stores
// the resolved principal in the request locals.
func NewJWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principalFromHeader(c.Get(fiber.HeaderAuthorization), secret)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.Unauthenticated("Missing or invalid Authorization header")
		}
		c.Locals(principalKey, *p)
		return c.Next()
	}
}

// OptionalJWT resolves the principal when a token is present and lets
// anonymous requests through as the zero principal. A bad token is still rejected.
func OptionalJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principalFromHeader(c.Get(fiber.HeaderAuthorization), secret)
		if err != nil {
			return err
		}
		if p != nil {
			c.Locals(principalKey, *p)
		}
		return c.Next()
	}
}

// CurrentPrincipal returns the caller resolved by the JWT middleware, or the
// anonymous zero principal.
func CurrentPrincipal(c *fiber.Ctx) models.Principal {
	p, _ := c.Locals(principalKey).(models.Principal)
	return p
}

func principalFromHeader(header, secret string) (*models.Principal, error) {
	if header == "" {
		return nil, nil
	}
	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, apperrors.Unauthenticated("Invalid Authorization header format")
	}
	tokenString := strings.TrimSpace(header[len("Bearer "):])

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthenticated("Invalid token payload")
	}
	// JWT numbers decode as float64
	userID, ok := claims["userId"].(float64)
	if !ok || userID < 1 {
		return nil, apperrors.Unauthenticated("Invalid token payload")
	}

	p := &models.Principal{UserID: uint(userID), Role: models.RoleUser}
	if role, _ := claims["role"].(string); role != "" {
		p.Role = strings.ToUpper(role)
	}
	p.Email, _ = claims["email"].(string)
	p.Name, _ = claims["name"].(string)
	return p, nil
}
