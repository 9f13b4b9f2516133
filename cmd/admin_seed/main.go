package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"pazar/internal/config"
	"pazar/internal/models"
	"pazar/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("component=admin_seed msg=\"invalid configuration\" err=%v", err)
	}
	if cfg.StoreDriver != "postgres" {
		log.Fatal("admin_seed requires STORE_DRIVER=postgres")
	}

	ctx := context.Background()
	db, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("component=admin_seed msg=\"database unavailable\" err=%v", err)
	}
	defer db.Close()
	store := repositories.NewStore(db.DB)

	if _, err := store.GetUserByEmail(ctx, adminEmail); err == nil {
		log.Println("Admin user already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		log.Fatalf("component=admin_seed msg=\"lookup failed\" err=%v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := &models.User{
		Email:        adminEmail,
		Password:     string(hashedPassword),
		Name:         "Administrator",
		Phone:        adminPhone,
		Role:         models.RoleAdmin,
		TokenVersion: 1,
	}
	if err := store.CreateUser(ctx, adminUser); err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("component=admin_seed msg=\"admin account created\" user_id=%d", adminUser.ID)
}
