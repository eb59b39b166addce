package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": message,
			})
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(100, 1*time.Minute, "Too many requests. Please try again later.")
}

// Rate limiter untuk login akun (lebih ketat)
func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, 1*time.Minute, "Too many login attempts. Please wait a moment.")
}

// Rate limiter untuk pembuatan akun
func RegisterRateLimiter() fiber.Handler {
	return newLimiter(3, 5*time.Minute, "Too many account creations. Please wait a few minutes.")
}

// Rate limiter untuk endpoint asisten (memanggil layanan eksternal)
func AssistantRateLimiter() fiber.Handler {
	return newLimiter(20, 1*time.Minute, "Too many questions. Please wait a moment.")
}
