package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Kunci Locals yang diisi middleware auth.
const (
	LocAccountID    = "account_id"
	LocAccountEmail = "account_email"
)

// GetAccountIDFromToken mengambil account_id dari c.Locals.
// 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetAccountIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocAccountID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}

	var s string
	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid account id in token")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid account id in token")
	}
	return id, nil
}

// OptionalAccountID: nil untuk request anonim.
func OptionalAccountID(c *fiber.Ctx) *uuid.UUID {
	id, err := GetAccountIDFromToken(c)
	if err != nil {
		return nil
	}
	return &id
}

// ParseUUIDParam parses a path parameter, answering 400 on bad input.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
