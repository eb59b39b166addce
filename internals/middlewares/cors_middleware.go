// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"inscription_backend/internals/configs"
)

// CorsMiddleware membuat middleware CORS dari CORS_ORIGINS (dipisah koma).
func CorsMiddleware() fiber.Handler {
	return cors.New(corsConfig(configs.CORSOrigins))
}

func corsConfig(origins string) cors.Config {
	var list []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			list = append(list, o)
		}
	}
	allow := strings.Join(list, ", ")
	if allow == "" {
		allow = "*"
	}
	return cors.Config{
		AllowOrigins: allow,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		// fiber menolak wildcard + credentials
		AllowCredentials: allow != "*",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
	}
}
