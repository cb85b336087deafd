package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTSecret          string
	TokenExpireMinutes int

	NATSPort int

	// Optional rotating log file; empty means console only
	LogFile string

	// Optional bedside-sensor vitals ingest; empty broker disables it
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	VitalsTopic  string

	// Optional OpenAI access; empty key switches the GPT client to
	// canned offline summaries
	OpenAIKey   string
	OpenAIModel string

	StaticDir string

	HospitalName string

	// Monitor loop intervals in seconds
	AlertCheckInterval int
	HeartbeatInterval  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:               getEnv("PORT", "8000"),
		Env:                getEnv("ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", "hexward-dev-secret-change-me"),
		TokenExpireMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		NATSPort:           getEnvInt("NATS_PORT", 4233),
		LogFile:            getEnv("LOG_FILE", ""),
		MQTTBroker:         getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:       getEnv("MQTT_CLIENT_ID", "hexward-backend"),
		MQTTUsername:       getEnv("MQTT_USERNAME", ""),
		MQTTPassword:       getEnv("MQTT_PASSWORD", ""),
		VitalsTopic:        getEnv("VITALS_TOPIC", "hexward/vitals/+"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		StaticDir:          getEnv("STATIC_DIR", "static"),
		HospitalName:       getEnv("HOSPITAL_NAME", "HexWard Medical Center"),
		AlertCheckInterval: getEnvInt("ALERT_CHECK_INTERVAL", 5),
		HeartbeatInterval:  getEnvInt("HEARTBEAT_INTERVAL", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
