package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config values from environment variables, loading a .env
// file first if one is present in the working directory. A missing .env file
// is not an error; explicitly exported variables win over the file.
//
// Recognized variables:
//
//	ADDRESS    — HTTP bind address
//	DB_URI     — PostgreSQL DSN
//	SECRET_KEY — JWT HMAC secret
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv("DB_URI"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
}
