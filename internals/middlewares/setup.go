package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"inscription_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global dengan urutan yang tetap:
// recover paling luar, lalu request-id, log, cors, kompresi, etag, limiter.
func SetupMiddlewares(app *fiber.App, requestTimeout time.Duration) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestIDMiddleware(requestTimeout))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
}
