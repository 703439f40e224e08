package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	ServerPort   string
	JWTSecret    string
	UploadDir    string
	MigrationDir string
	ScanInterval time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "todo_user"),
		DBPassword:   getEnv("DB_PASSWORD", "todo_pass"),
		DBName:       getEnv("DB_NAME", "todo_db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "supersecretkey"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		MigrationDir: getEnv("MIGRATION_DIR", "migrations"),
		ScanInterval: getEnvMinutes("SCAN_INTERVAL_MINUTES", 15),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvMinutes(key string, defaultMinutes int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return time.Duration(defaultMinutes) * time.Minute
}
