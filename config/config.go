package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Multi-tenant scope this gateway serves. Every ticket it files is
	// stamped with these.
	OrgID   string `mapstructure:"ORG_ID"`
	HotelID string `mapstructure:"HOTEL_ID"`

	// MongoDB (ticket persistence).
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB     int    `mapstructure:"REDIS_SESSION_DB"`
	RedisNotifyQueueDB int    `mapstructure:"REDIS_NOTIFY_QUEUE_DB"`

	// Guest session lifetime (sliding, minutes).
	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`

	// Gemini classifier.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// WhatsApp Cloud API.
	WhatsAppToken       string `mapstructure:"WHATSAPP_TOKEN"`
	WhatsAppPhoneID     string `mapstructure:"WHATSAPP_PHONE_ID"`
	WhatsAppVerifyToken string `mapstructure:"WHATSAPP_VERIFY_TOKEN"`
	WhatsAppAppSecret   string `mapstructure:"WHATSAPP_APP_SECRET"`

	// Staff-facing notifications.
	OpsWhatsAppNumber string `mapstructure:"OPS_WHATSAPP_NUMBER"`
	StaffFCMTopic     string `mapstructure:"STAFF_FCM_TOPIC"`

	// Firebase service account (FCM pushes to staff devices).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Google Cloud Speech (voice note transcription).
	SpeechCredentialsFile string `mapstructure:"SPEECH_CREDENTIALS_FILE"`

	// Ops API auth.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// SLA minutes per ticket priority.
	SLAMinutesAlta  int `mapstructure:"SLA_MINUTES_ALTA"`
	SLAMinutesMedia int `mapstructure:"SLA_MINUTES_MEDIA"`
	SLAMinutesBaja  int `mapstructure:"SLA_MINUTES_BAJA"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "hestia")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_NOTIFY_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 15)
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("STAFF_FCM_TOPIC", "hestia-staff")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("SLA_MINUTES_ALTA", 30)
	viper.SetDefault("SLA_MINUTES_MEDIA", 120)
	viper.SetDefault("SLA_MINUTES_BAJA", 480)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
