package cmd

import (
	"flag"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"vnai-backend/internal/auth"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// CreateVerifier picks the auth backend: a remote GoTrue-style service when
// an auth URL is configured, otherwise the local api_tokens table.
func CreateVerifier(db *gorm.DB, authURL, anonKey string) auth.Verifier {
	if authURL != "" {
		return auth.NewRemoteVerifier(authURL, anonKey)
	}

	slog.Warn("AUTH_URL not configured, falling back to local token verification")
	return auth.NewTokenVerifier(db)
}
