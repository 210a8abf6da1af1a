package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName        string
	Port           string
	Env            string
	Debug          bool
	TransferPrefix string
	// Add more fields as needed
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		prefix := os.Getenv("TRANSFER_PREFIX")
		if prefix == "" {
			prefix = "TRF"
		}
		AppConfig = &Config{
			AppName:        os.Getenv("APP_NAME"),
			Port:           os.Getenv("PORT"),
			Env:            os.Getenv("APP_ENV"),
			Debug:          os.Getenv("DEBUG") == "true",
			TransferPrefix: prefix,
		}
	})
}

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Read-only transfer queries are public, mutations require auth
	return []string{"/graphql", "/health"}
}
