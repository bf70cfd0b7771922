package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"aquawatch-be/common"
)

// Env holds all environment-derived settings. MongoURI and JWTSecret are
// required; the AI and weather keys are optional and those features report
// a configuration error to the caller instead of failing startup.
type Env struct {
	MongoURI      string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	GeminiAPIKey  string
	WeatherAPIKey string
	AdminEmail    string
	AdminPassword string
	Port          string
}

// LoadEnv reads and validates the environment. It returns an error for the
// fatal cases so main can decide how to die.
func LoadEnv() (*Env, error) {
	env := &Env{
		MongoURI:      os.Getenv("MONGODB_URI"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		WeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Port:          os.Getenv("PORT"),
	}

	if env.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
	}
	if env.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if env.Port == "" {
		env.Port = "8080"
	}

	logger := common.GetLoggerWith("config")
	if env.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, chat assistant will be unavailable")
	}
	if env.WeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set, weather lookups will be unavailable")
	}
	if env.AdminEmail == "" || env.AdminPassword == "" {
		logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, no admin account will be seeded",
			zap.Bool("adminSeeding", false))
	}

	return env, nil
}
