package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/assistant/controller"
	"inscription_backend/internals/features/assistant/service"
	"inscription_backend/internals/middlewares"
)

func AssistantRoutes(r fiber.Router, svc *service.Service) {
	log.Println("[DEBUG] ❗ Masuk AssistantRoutes")

	ctl := controller.NewAssistantController(svc)

	g := r.Group("/assistant", middlewares.AssistantRateLimiter())
	g.Post("/ask", ctl.Ask)
	g.Post("/help-field", ctl.HelpField)
	g.Get("/codes", ctl.Codes)
	g.Get("/documents", ctl.Documents)
}
