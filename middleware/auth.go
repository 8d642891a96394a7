package middleware

import (
	"fmt"
	"os"
	"strings"

	"parcel-delivery/constants"
	"parcel-delivery/logger"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth validates the Bearer token and stores the claims in
// c.Locals("user") for controllers.
func RequireAuth() fiber.Handler {
	return requireRoles()
}

// RequireAdmin restricts the route to the admin role.
func RequireAdmin() fiber.Handler {
	return requireRoles(constants.RoleAdmin)
}

// RequireRoles restricts the route to the given roles.
func RequireRoles(roles ...string) fiber.Handler {
	return requireRoles(roles...)
}

func requireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseToken(c)
		if err != nil {
			logger.Warning("Rejected request: " + err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(types.Fail("Unauthorized"))
		}

		if len(roles) > 0 {
			role, _ := claims["role"].(string)
			if !roleAllowed(role, roles) {
				return c.Status(fiber.StatusForbidden).JSON(types.Fail("Insufficient role"))
			}
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

func parseToken(c *fiber.Ctx) (jwt.MapClaims, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil, fmt.Errorf("malformed Authorization header")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("APP_KEY")), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
