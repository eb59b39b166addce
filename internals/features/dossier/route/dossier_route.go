package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/controller"
)

func DossierRoutes(r fiber.Router, cat *catalog.Catalog) {
	log.Println("[DEBUG] ❗ Masuk DossierRoutes")

	ctl := controller.NewDossierController(cat)

	catalogGroup := r.Group("/catalog")
	catalogGroup.Get("/sections", ctl.Sections)
	catalogGroup.Get("/fields/:name", ctl.Field)

	docs := r.Group("/documents")
	docs.Get("/rules", ctl.DocumentRules)
	docs.Post("/validate", ctl.ValidateDocument)
}
