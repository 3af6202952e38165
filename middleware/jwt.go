package middleware

import (
	"coursehub/config"
	"coursehub/services/actor"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string, centerID *uint) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),                     // issued at
		"exp":    time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}
	if centerID != nil {
		claims["centerId"] = *centerID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return JsonResponse(c, fiber.StatusUnauthorized, false, message, nil)
}

// rolesFromClaims accepts a single "role" claim or a "roles" list.
func rolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	if role, ok := claims["role"].(string); ok && role != "" {
		roles = append(roles, strings.ToUpper(role))
	}
	if list, ok := claims["roles"].([]interface{}); ok {
		for _, r := range list {
			if s, ok := r.(string); ok && s != "" {
				roles = append(roles, strings.ToUpper(s))
			}
		}
	}
	if len(roles) == 0 {
		roles = []string{actor.RoleUser}
	}
	return roles
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Missing or invalid Authorization header")
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c, "Invalid Authorization header format")
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return unauthorized(c, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(c, "Invalid token payload")
	}
	userID, ok := claims["userId"].(float64) // JWT numbers decode as float64
	if !ok || userID <= 0 {
		return unauthorized(c, "Invalid token payload")
	}

	a := actor.Actor{UserID: uint(userID), Roles: rolesFromClaims(claims)}
	if centerID, ok := claims["centerId"].(float64); ok && centerID > 0 {
		id := uint(centerID)
		a.CenterID = &id
	}
	c.Locals("userId", a.UserID)
	c.Locals("actor", a)

	return c.Next()
}

// ActorFrom returns the caller stored by JWTMiddleware.
func ActorFrom(c *fiber.Ctx) (actor.Actor, bool) {
	a, ok := c.Locals("actor").(actor.Actor)
	return a, ok
}
