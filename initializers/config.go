package initializers

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rajagopika181204/website-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Port            string
	Env             string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type PaymentConfig struct {
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string
	UPIPayeeAddress   string
	UPIPayeeName      string
}

type StorageConfig struct {
	Disk        string
	LocalRoot   string
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Config holds everything the server reads from the environment.
type Config struct {
	Server          ServerConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Payment         PaymentConfig
	SMTP            utils.SMTPConfig
	Storage         StorageConfig
	LogLevel        string
	CheckoutTimeout time.Duration
}

// LoadConfig reads the environment. Call LoadEnv first to pick up a .env file.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			Env:             getEnv("APP_ENV", "development"),
			CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DB_DSN", "root:password@tcp(localhost:3306)/techstore?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 2*time.Minute),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Silent),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("CATALOG_CACHE_TTL", time.Minute),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Payment: PaymentConfig{
			RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Currency:          getEnv("PAYMENT_CURRENCY", "INR"),
			UPIPayeeAddress:   getEnv("UPI_PAYEE_ADDRESS", "techstore@upi"),
			UPIPayeeName:      getEnv("UPI_PAYEE_NAME", "TechStore"),
		},
		SMTP: utils.SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Storage: StorageConfig{
			Disk:        getEnv("STORAGE_DISK", "local"),
			LocalRoot:   getEnv("IMAGES_DIR", "images"),
			S3Bucket:    getEnv("AWS_BUCKET", ""),
			S3Region:    getEnv("AWS_REGION", ""),
			S3Prefix:    getEnv("AWS_PREFIX", "images"),
			S3Endpoint:  getEnv("AWS_ENDPOINT", ""),
			S3AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			S3SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CheckoutTimeout: getEnvAsDuration("CHECKOUT_TIMEOUT", 15*time.Second),
	}
}

// Fields describes the config for the startup log line without secrets.
func (c *Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_driver", c.DB.Driver),
		zap.Bool("redis", c.Redis.Addr != ""),
		zap.Bool("razorpay", c.Payment.RazorpayKeySecret != ""),
		zap.Bool("smtp", c.SMTP.Host != ""),
		zap.String("storage", c.Storage.Disk),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
