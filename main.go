package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inscription_backend/internals/configs"
	database "inscription_backend/internals/databases"
	accountModel "inscription_backend/internals/features/accounts/model"
	"inscription_backend/internals/features/dossier/catalog"
	profileModel "inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/features/profiles/scheduler"
	helper "inscription_backend/internals/helpers"
	middlewares "inscription_backend/internals/middlewares"
	routes "inscription_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	// katalog formulir dimuat sekali; gagal parse = tidak boleh jalan
	cat := catalog.MustDefault()
	log.Printf("✅ Catalog %s loaded (%d sections)", cat.Version(), len(cat.Sections()))

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               12 * 1024 * 1024, // upload dokumen s/d 10MB + overhead multipart
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// timeout request diselaraskan dengan timeout asisten + sedikit ruang
	middlewares.SetupMiddlewares(app, configs.AssistantTimeout+5*time.Second)

	// 🔌 storage: postgres (default) atau memori
	var db *gorm.DB
	if strings.EqualFold(configs.GetEnv("STORAGE", "postgres"), "memory") {
		log.Println("ℹ️ STORAGE=memory, data hilang saat restart")
	} else {
		database.ConnectDB()
		database.TunePool()
		database.Migrate(&accountModel.UserAccountModel{}, &profileModel.StudentProfileModel{})
		database.WarmUpQueries()
		db = database.DB
	}

	svcs := routes.BuildServices(db, cat)

	// ⏱ scheduler setelah storage siap
	cleanup, err := scheduler.StartSessionCleanupScheduler(svcs.Profiles, configs.CleanupCron, configs.SessionTTL)
	if err != nil {
		log.Fatalf("❌ SESSION_CLEANUP_CRON tidak valid: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, db, svcs)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", configs.Port)
		if err := app.Listen("0.0.0.0:" + configs.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	<-cleanup.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
