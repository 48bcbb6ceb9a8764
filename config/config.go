package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB   int    `mapstructure:"REDIS_SESSION_DB"`
	RedisDraftDB     int    `mapstructure:"REDIS_DRAFT_DB"`
	RedisOTPDB       int    `mapstructure:"REDIS_OTP_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Onboarding flow settings.
	SessionTTLMinutes  int    `mapstructure:"SESSION_TTL_MINUTES"`
	DraftTTLHours      int    `mapstructure:"DRAFT_TTL_HOURS"`
	StagingDir         string `mapstructure:"STAGING_DIR"`
	VerifyReturnBase   string `mapstructure:"VERIFY_RETURN_BASE"`
	CompletionRedirect string `mapstructure:"COMPLETION_REDIRECT"`

	// Secret used to sign the verified-phone return token.
	VerifyTokenSecret string `mapstructure:"VERIFY_TOKEN_SECRET"`

	// Stripe billing.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Firebase service account for ops notifications.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	OpsNotifyTopic          string `mapstructure:"OPS_NOTIFY_TOPIC"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_DRAFT_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("DRAFT_TTL_HOURS", 24)
	viper.SetDefault("STAGING_DIR", "")
	viper.SetDefault("VERIFY_RETURN_BASE", "/sign-up/verify-otp")
	viper.SetDefault("COMPLETION_REDIRECT", "/dashboard")
	viper.SetDefault("OPS_NOTIFY_TOPIC", "clinic-onboarding")

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
