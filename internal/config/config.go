package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"lukechampine.com/uint128"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/rng"
)

// AppConfig holds all environment variables.
type AppConfig struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBName      string
	DBPassword  string
	DBSSLMode   string
	JWTSecret   string
	FrontendURL string
	LogLevel    string

	OperatorUsername     string
	OperatorPasswordHash string // bcrypt

	StoreDriver     string // postgres | memory
	RandomSource    string // mixer | csprng
	MinQuantity     uint128.Uint128
	DrawMaxAttempts int
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads environment variables (and .env if present)
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	c := &AppConfig{
		Port:                 getenv("PORT", "8080"),
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               os.Getenv("DB_PORT"),
		DBUser:               os.Getenv("DB_USER"),
		DBName:               os.Getenv("DB_NAME"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBSSLMode:            getenv("DB_SSLMODE", "disable"),
		JWTSecret:            os.Getenv("JWT_SECRET_KEY"),
		FrontendURL:          os.Getenv("FRONTEND_URL"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		OperatorUsername:     os.Getenv("OPERATOR_USERNAME"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		StoreDriver:          strings.ToLower(getenv("STORE_DRIVER", "postgres")),
		RandomSource:         strings.ToLower(getenv("RANDOM_SOURCE", "mixer")),
	}

	minQ, err := uint128.FromString(getenv("MIN_LOTTERY_QUANTITY", "500000"))
	if err != nil {
		return nil, fmt.Errorf("MIN_LOTTERY_QUANTITY: %w", err)
	}
	c.MinQuantity = minQ

	attempts, err := strconv.Atoi(getenv("DRAW_MAX_ATTEMPTS", strconv.Itoa(lots.DefaultMaxAttempts)))
	if err != nil || attempts < 1 {
		return nil, fmt.Errorf("DRAW_MAX_ATTEMPTS: invalid value %q", os.Getenv("DRAW_MAX_ATTEMPTS"))
	}
	c.DrawMaxAttempts = attempts

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}

	return c, nil
}

// NewLogger builds the JSON logrus logger used by every component.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// NewRandomSource returns the draw randomness selected by RANDOM_SOURCE.
func NewRandomSource(c *AppConfig) (lots.RandomSource, error) {
	switch c.RandomSource {
	case "mixer":
		return rng.NewMixer(rng.NewClock(), 0), nil
	case "csprng":
		return rng.NewCSPRNG()
	default:
		return nil, fmt.Errorf("RANDOM_SOURCE: unknown source %q", c.RandomSource)
	}
}

// InitDB opens postgres with gorm, logging SQL through log.
func InitDB(c *AppConfig, log *logrus.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)

	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	gormLogger := logger.New(
		log.WithField("component", "gorm"),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// CORSMiddleware allows the configured frontend, or every origin when none is set.
func CORSMiddleware(c *AppConfig) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if c.FrontendURL == "" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = strings.Split(c.FrontendURL, ",")
	}
	return cors.New(cfg)
}
