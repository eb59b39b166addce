package helper

import "github.com/gofiber/fiber/v2"

// ErrorHandler dipasang di fiber.Config supaya error dari middleware
// (mis. *fiber.Error 401 dari auth) tetap keluar dengan bentuk ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return JsonFromError(c, err)
}
