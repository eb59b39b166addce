// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"inscription_backend/internals/configs"
	helper "inscription_backend/internals/helpers"
)

// AccountChecker memastikan akun dari token masih ada.
type AccountChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

const expirySkew = 30 * time.Second

// AuthMiddleware mewajibkan bearer token yang valid untuk akun yang masih ada.
func AuthMiddleware(accounts AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			log.Println("[ERROR] token:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		accountID, err := extractAccountID(claims)
		if err != nil {
			log.Println("[ERROR] account id:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing account ID")
		}

		ok, err := accounts.Exists(c.UserContext(), accountID)
		if err != nil {
			log.Println("[ERROR] account lookup:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Account not found")
		}

		storeClaimsToLocals(c, accountID, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware mengisi konteks akun kalau token valid,
// selain itu request lanjut sebagai anonim.
func OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return c.Next()
		}
		claims, err := parseClaims(tokenString)
		if err != nil {
			log.Println("[INFO] Token tidak valid, lanjut sebagai anonymous:", err)
			return c.Next()
		}
		accountID, err := extractAccountID(claims)
		if err != nil {
			return c.Next()
		}
		storeClaimsToLocals(c, accountID, claims)
		return c.Next()
	}
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	secretKey := configs.JWTSecret
	if secretKey == "" {
		return nil, errMissingSecret
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{
		SkipClaimsValidation: true,
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
	}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		return nil, errParse
	}
	if err := validateTokenExpiry(claims, expirySkew); err != nil {
		return nil, err
	}
	return claims, nil
}

func storeClaimsToLocals(c *fiber.Ctx, accountID uuid.UUID, claims jwt.MapClaims) {
	c.Locals(helper.LocAccountID, accountID.String())
	if email, ok := claims["email"].(string); ok {
		c.Locals(helper.LocAccountEmail, email)
	}
}
