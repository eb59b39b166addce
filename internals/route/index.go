// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inscription_backend/internals/configs"
	accountRepo "inscription_backend/internals/features/accounts/repository"
	accountRoutes "inscription_backend/internals/features/accounts/route"
	accountService "inscription_backend/internals/features/accounts/service"
	assistantRoutes "inscription_backend/internals/features/assistant/route"
	assistantService "inscription_backend/internals/features/assistant/service"
	"inscription_backend/internals/features/dossier/catalog"
	dossierRoutes "inscription_backend/internals/features/dossier/route"
	profileRepo "inscription_backend/internals/features/profiles/repository"
	profileRoutes "inscription_backend/internals/features/profiles/route"
	profileService "inscription_backend/internals/features/profiles/service"
)

var startTime time.Time

// Services adalah semua service yang dipakai route, dirakit sekali di main.
type Services struct {
	Catalog     *catalog.Catalog
	Profiles    *profileService.Service
	Accounts    *accountService.Service
	Assistant   *assistantService.Service
	Institution string
}

// BuildServices merakit service di atas Postgres (db != nil) atau
// penyimpanan memori (db == nil, STORAGE=memory).
func BuildServices(db *gorm.DB, cat *catalog.Catalog) *Services {
	var (
		profiles profileService.ProfileStore
		accounts accountService.AccountStore
	)
	if db != nil {
		log.Println("[INFO] Storage: postgres")
		profiles = profileRepo.NewGormStore(db)
		accounts = accountRepo.NewGormStore(db)
	} else {
		log.Println("[INFO] Storage: memory")
		mem := profileRepo.NewMemoryStore()
		profiles = mem
		accounts = accountRepo.NewMemoryStore(mem)
	}

	profileSvc := profileService.New(profiles, cat)

	return &Services{
		Catalog:  cat,
		Profiles: profileSvc,
		// linking a session takes the same per-session lock as profile mutations
		Accounts: accountService.New(accounts, profileSvc, configs.JWTSecret, configs.JWTTTL),
		Assistant: assistantService.New(
			assistantService.NewHTTPAnswerer(configs.AssistantURL, configs.AssistantTimeout),
			cat,
			configs.InstitutionName,
		),
		Institution: configs.InstitutionName,
	}
}

func SetupRoutes(app *fiber.App, db *gorm.DB, s *Services) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db, s.Catalog)

	api := app.Group("/api")

	log.Println("[INFO] Mounting Dossier routes...")
	dossierRoutes.DossierRoutes(api, s.Catalog)

	log.Println("[INFO] Mounting Profile routes...")
	profileRoutes.ProfileRoutes(api, s.Profiles, s.Institution)

	log.Println("[INFO] Mounting Account routes...")
	accountRoutes.AccountRoutes(api, s.Accounts, s.Profiles)

	log.Println("[INFO] Mounting Assistant routes...")
	assistantRoutes.AssistantRoutes(api, s.Assistant)
}
