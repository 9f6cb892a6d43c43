package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/crimewatch-io/crimewatch/internal/api"
	"github.com/crimewatch-io/crimewatch/internal/auth"
	"github.com/crimewatch-io/crimewatch/internal/config"
	"github.com/crimewatch-io/crimewatch/internal/crime"
	"github.com/crimewatch-io/crimewatch/internal/database"
	"github.com/crimewatch-io/crimewatch/internal/mail"
	"github.com/crimewatch-io/crimewatch/internal/models"
	"github.com/crimewatch-io/crimewatch/internal/person"
	"github.com/crimewatch-io/crimewatch/internal/storage"
)

func main() {
	configPath := flag.String("config", "app.yml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	var mailer mail.Mailer
	if cfg.Mail.ResendAPIKey != "" {
		mailer = mail.NewResendClient(cfg.Mail.ResendAPIKey, cfg.Mail.FromAddress)
	} else {
		log.Println("mail.resendApiKey not set; OTP codes will be logged instead of emailed")
		mailer = mail.LogMailer{}
	}

	adminStore := auth.NewAdminStore()
	authSvc := auth.NewService(
		auth.NewUserStore(),
		adminStore,
		auth.NewUserSessionStore(),
		auth.NewAdminSessionStore(),
		tokens,
		mailer,
	)

	if err := seedAdmin(adminStore, cfg); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	personSvc := person.NewService(person.NewStore())
	crimeSvc := crime.NewService(crime.NewStore(), personSvc)

	var uploader storage.Uploader
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Client(
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
			cfg.Storage.Bucket,
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
		)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		uploader = s3
	} else {
		log.Println("storage.bucket not set; uploads disabled")
	}

	app := api.NewApi(cfg, authSvc, tokens, personSvc, crimeSvc, uploader)
	if err := app.Serve(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// seedAdmin creates the bootstrap admin account when one is configured and
// the email is not yet registered.
func seedAdmin(admins auth.AdminStore, cfg *config.Config) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	if _, err := admins.GetByEmail(cfg.Auth.AdminEmail); err == nil {
		return nil
	} else if err != auth.ErrNotFound {
		return err
	}

	hash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		ID:           uuid.New().String(),
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    time.Now(),
	}
	if err := admins.Create(admin); err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", admin.Email)
	return nil
}
