package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sotramag/tonnage-api/internal/application/dto"
	"github.com/sotramag/tonnage-api/pkg/jwt"
)

// Clés Locals pour l'identité extraite du token.
const (
	LocalUserID    = "user_id"
	LocalRole      = "role"
	LocalMagasinID = "magasin_id"
)

// Rôles portés par le token. La convention grossière manager/magasinier est
// appliquée au routeur ; l'autorisation fine reste chez l'appelant.
const (
	RoleManager    = "manager"
	RoleMagasinier = "magasinier"
)

// AuthMiddleware valide le Bearer Token JWT et place l'identité
// (user, rôle, magasin) dans c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "en-tête Authorization requis"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "format attendu: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vide"})
		}
		userID, role, magasinID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token invalide ou expiré"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		c.Locals(LocalMagasinID, magasinID)
		return c.Next()
	}
}

// RequireRole n'autorise que les rôles listés (après AuthMiddleware).
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rôle insuffisant"})
	}
}

// GetUserID retourne le UserID du contexte (après AuthMiddleware).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetRole retourne le rôle du contexte.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

// GetMagasinID retourne le magasin rattaché à l'opérateur (peut être vide).
func GetMagasinID(c *fiber.Ctx) string {
	return localString(c, LocalMagasinID)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
