package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string
	CORSOrigins string

	// Command used to spawn the Python pose detector, e.g.
	// "python3 detector/pose_worker.py".
	DetectorCommand string
	DetectorModel   string

	RulesPath string

	LogLevel    string
	LogJSON     bool
	Environment string

	DBName     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// DSNForLog renders the DSN without the password for logging.
func (c *Config) DSNForLog() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=*** dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func LoadConfig() *Config {
	// .env is optional; fall back to the process environment.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using system environment variables")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		DetectorCommand: getEnv("DETECTOR_COMMAND", "python3 detector/pose_worker.py"),
		DetectorModel:   getEnv("DETECTOR_MODEL", "pose_landmarker_full"),
		RulesPath:       getEnv("RULES_PATH", "rules.toml"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogJSON:         getEnvBool("LOG_JSON", false),
		Environment:     getEnv("ENVIRONMENT", "production"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "formcheck"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
	}

	if cfg.DBPassword == "" {
		logrus.Warn("DB_PASSWORD is not set")
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
