package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(c *fiber.Ctx) error {
	auth := c.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return c.Status(401).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
	}

	tokenStr := auth[7:]
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-key-change-in-production"
	}

	token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return c.Status(401).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
	}

	claims := token.Claims.(*jwt.MapClaims)
	userID := int((*claims)["user_id"].(float64))
	userUUID, _ := (*claims)["uuid"].(string)
	email, _ := (*claims)["email"].(string)
	name, _ := (*claims)["name"].(string)

	c.Locals("user_id", userID)
	c.Locals("user_uuid", userUUID)
	c.Locals("email", email)
	c.Locals("name", name)

	return c.Next()
}
