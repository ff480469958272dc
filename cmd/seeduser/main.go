// cmd/seeduser creates or resets the platform superadmin.
// Uso: SUPERADMIN_EMAIL=... SUPERADMIN_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SUPERADMIN_EMAIL")))
	password := os.Getenv("SUPERADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		log.Fatal().Msg("SUPERADMIN_EMAIL y SUPERADMIN_PASSWORD (min 8 caracteres) son requeridos")
	}
	nombre := os.Getenv("SUPERADMIN_NOMBRE")
	if nombre == "" {
		nombre = "Superadmin"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	u := model.Usuario{
		Nombre:       nombre,
		Email:        email,
		PasswordHash: string(hash),
		Rol:          model.RolSuperadmin,
		Activo:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"nombre", "password_hash", "rol", "activo", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert error")
	}
	log.Info().Str("email", email).Msg("superadmin creado/actualizado")
}
