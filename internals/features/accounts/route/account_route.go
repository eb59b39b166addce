// file: internals/features/accounts/route/account_route.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/accounts/controller"
	"inscription_backend/internals/features/accounts/service"
	profileService "inscription_backend/internals/features/profiles/service"
	"inscription_backend/internals/middlewares"
	authMiddleware "inscription_backend/internals/middlewares/auth"
)

func AccountRoutes(r fiber.Router, svc *service.Service, profiles *profileService.Service) {
	log.Println("[DEBUG] ❗ Masuk AccountRoutes")

	ctl := controller.NewAccountController(svc, profiles)

	account := r.Group("/account")
	account.Post("/create", middlewares.RegisterRateLimiter(), ctl.Create)
	account.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)

	// /me harus terdaftar sebelum /:email
	me := account.Group("/me", authMiddleware.AuthMiddleware(svc))
	me.Get("/profiles", ctl.MyProfiles)
	me.Delete("/", ctl.DeleteMe)

	account.Post("/:email/save-profile", ctl.SaveProfile)
}
