package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	StoreDriver string
	MySQLDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	UploadDir      string
	UploadMaxBytes int64

	CORSAllowedOrigins []string

	TripDefaultFrom   string
	TripDefaultTo     string
	TripDefaultSeats  int
	DefaultUniversity string

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminPhone    string
}

// LoadEnv reads configuration from the process environment. A .env file in the
// working directory is merged first when present; real variables win.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:  getString("APP_ADDR", ":8080"),
		GinMode:  getString("GIN_MODE", ""),
		LogLevel: getString("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getString("STORE_DRIVER", StoreMemory)),
		MySQLDSN: getString("MYSQL_DSN",
			"root:@tcp(127.0.0.1:3306)/student_bus?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),

		JWTSecret: getString("JWT_SECRET", ""),
		JWTTTL:    getDuration("JWT_TTL", 30*24*time.Hour),

		UploadDir:      getString("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 5<<20)),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		TripDefaultFrom:   getString("TRIP_DEFAULT_FROM", "Rashid"),
		TripDefaultTo:     getString("TRIP_DEFAULT_TO", "Damanhour University"),
		TripDefaultSeats:  getInt("TRIP_DEFAULT_SEATS", 33),
		DefaultUniversity: getString("DEFAULT_UNIVERSITY", "Damanhour University"),

		AdminEmail:    getString("ADMIN_EMAIL", "admin@studentbus.com"),
		AdminPassword: getString("ADMIN_PASSWORD", ""),
		AdminName:     getString("ADMIN_NAME", "Admin"),
		AdminPhone:    getString("ADMIN_PHONE", ""),
	}
}

func getString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
