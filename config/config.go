package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
)

type Config struct {
	ServerPort   string
	GeminiAPIKey string
	GSTRules     dto.GSTRuleset
	MaxFileSize  int64
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	} else {
		log.Println("Loaded environment variables from .env file.")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	rules := dto.DefaultGSTRuleset()
	if raw := os.Getenv("GST_TOTAL_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			log.Printf("Invalid GST_TOTAL_RATE %q, keeping default rate: %v", raw, err)
		} else {
			rules.TotalRate = rate
		}
	}

	return &Config{
		ServerPort:   serverPort,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GSTRules:     rules,
		MaxFileSize:  10 * 1024 * 1024, // 10 MB
	}
}
