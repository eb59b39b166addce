// file: internals/features/profiles/route/profile_route.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/profiles/controller"
	"inscription_backend/internals/features/profiles/service"
	authMiddleware "inscription_backend/internals/middlewares/auth"
)

func ProfileRoutes(r fiber.Router, svc *service.Service, institution string) {
	log.Println("[DEBUG] ❗ Masuk ProfileRoutes")

	ctl := controller.NewProfileController(svc, institution)

	profile := r.Group("/profile")
	profile.Post("/start", authMiddleware.OptionalAuthMiddleware(), ctl.Start)

	session := profile.Group("/:session_id")
	session.Get("/", ctl.Get)
	session.Delete("/", ctl.Delete)
	session.Post("/update", ctl.UpdateFacts)
	session.Post("/phase2", ctl.Advance)
	session.Post("/form-data", ctl.UpdateFormData)
	session.Get("/missing-fields", ctl.MissingFields)
	session.Get("/export", ctl.Export)
}
