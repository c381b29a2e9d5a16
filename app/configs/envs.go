package configs

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type ENV struct {
	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	Port       string
	APP_URL    string
	APP_ENV    string

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	PAYSTACK_SECRET_KEY      string
	PAYSTACK_BASE_URL        string
	FLUTTERWAVE_SECRET_KEY   string
	FLUTTERWAVE_BASE_URL     string
	FLUTTERWAVE_WEBHOOK_HASH string

	AdminSecret string
	JWTSecret   string
	AppAuthKey  string
	AppEncKey   string
	CSRFKey     string

	EmailHost     string
	EmailPort     string
	EmailUsername string
	EmailPassword string
	EmailFrom     string

	DefaultDeliveryCharge decimal.Decimal
	AllowedOrigin         string
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	return ENV{
		DBDriver:                 getenv("DB_DRIVER", "mysql"),
		DBHost:                   os.Getenv("DB_HOST"),
		DBUser:                   os.Getenv("DB_USER"),
		DBPassword:               os.Getenv("DB_PASSWORD"),
		DBName:                   os.Getenv("DB_NAME"),
		DBPort:                   os.Getenv("DB_PORT"),
		Port:                     getenv("APP_PORT", ":3000"),
		APP_URL:                  getenv("APP_URL", "http://localhost:5173"),
		APP_ENV:                  getenv("APP_ENV", "development"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		KafkaBrokers:             splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:               getenv("KAFKA_TOPIC", "order-events"),
		PAYSTACK_SECRET_KEY:      os.Getenv("PAYSTACK_SECRET_KEY"),
		PAYSTACK_BASE_URL:        getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		FLUTTERWAVE_SECRET_KEY:   os.Getenv("FLUTTERWAVE_SECRET_KEY"),
		FLUTTERWAVE_BASE_URL:     getenv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),
		FLUTTERWAVE_WEBHOOK_HASH: os.Getenv("FLUTTERWAVE_WEBHOOK_HASH"),
		AdminSecret:              os.Getenv("ADMIN_SECRET"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		AppAuthKey:               os.Getenv("APP_AUTH_KEY"),
		AppEncKey:                os.Getenv("APP_ENC_KEY"),
		CSRFKey:                  os.Getenv("CSRF_KEY"),
		EmailHost:                os.Getenv("EMAIL_HOST"),
		EmailPort:                os.Getenv("EMAIL_PORT"),
		EmailUsername:            os.Getenv("EMAIL_USERNAME"),
		EmailPassword:            os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:                getenv("EMAIL_FROM", os.Getenv("EMAIL_USERNAME")),
		DefaultDeliveryCharge:    parseDecimal(os.Getenv("DEFAULT_DELIVERY_CHARGE"), "3500"),
		AllowedOrigin:            getenv("ALLOWED_ORIGIN", "*"),
	}

}

func (e ENV) IsProduction() bool {
	return e.APP_ENV == "production"
}

var LoadENV = LoadEnv()

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseDecimal(s, def string) decimal.Decimal {
	if s == "" {
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Printf("configs: invalid decimal %q, falling back to %s", s, def)
		return decimal.RequireFromString(def)
	}
	return d
}
