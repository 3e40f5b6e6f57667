package codekids

import (
	"codekids/internal/blocks"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Mode         string
	ApiPort      string
	CatalogFile  string
	FrameBroker  string // nats, mqtt or none
	TenantID     string // prefixes frame subjects and topics on every broker
	MainDatabase struct {
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
	}
	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
		TTL      int // in seconds
	}
	NatsConfig struct {
		URL string
	}
	MQTTConfig struct {
		URL      string
		ClientID string
	}
	RuntimeConfig struct {
		QuantumMs           int
		TrailingBufferMs    int
		Step                int
		StageIdleTTLSeconds int
	}
}

const (
	FrameBrokerNats = "nats"
	FrameBrokerMQTT = "mqtt"
	FrameBrokerNone = "none"
)

var config AppConfig

// readAppConfig builds the config from the environment without connecting to
// anything
func readAppConfig() AppConfig {
	return AppConfig{
		Mode:        getEnvOrPanic("RUN_MODE"),
		ApiPort:     getEnvOrPanic("API_PORT"),
		CatalogFile: GetEnv("CATALOG_FILE", ""),
		FrameBroker: GetEnv("FRAME_BROKER", FrameBrokerNats),
		TenantID:    GetEnv("TENANT_ID", "default"),
		MainDatabase: struct {
			Host         string
			Port         string
			User         string
			Password     string
			DatabaseName string
			SSLMode      string
		}{
			Host:         getEnvOrPanic("DB_HOSTNAME"),
			Port:         getEnvOrPanic("DB_PORT"),
			User:         getEnvOrPanic("DB_USERNAME"),
			Password:     getEnvOrPanic("DB_PASSWORD"),
			DatabaseName: getEnvOrPanic("DB_NAME"),
			SSLMode:      getEnvOrPanic("DB_SSL_MODE"),
		},
		RedisConfig: struct {
			Host     string
			Port     string
			Password string
			DB       int
			TTL      int
		}{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnvOrDefault("REDIS_DB", 0),
			TTL:      getIntEnvOrDefault("REDIS_TTL_SECONDS", 300),
		},
		NatsConfig: struct {
			URL string
		}{
			URL: GetEnv("NATS_URL", "nats://localhost:4222"),
		},
		MQTTConfig: struct {
			URL      string
			ClientID string
		}{
			URL:      GetEnv("MQTT_URL", "tcp://localhost:1883"),
			ClientID: GetEnv("MQTT_CLIENT_ID", "codekids-api"),
		},
		RuntimeConfig: struct {
			QuantumMs           int
			TrailingBufferMs    int
			Step                int
			StageIdleTTLSeconds int
		}{
			QuantumMs:           getIntEnvOrDefault("RUNTIME_QUANTUM_MS", 1000),
			TrailingBufferMs:    getIntEnvOrDefault("RUNTIME_TRAILING_BUFFER_MS", 500),
			Step:                getIntEnvOrDefault("RUNTIME_STEP", 50),
			StageIdleTTLSeconds: getIntEnvOrDefault("RUNTIME_STAGE_IDLE_TTL_SECONDS", 60),
		},
	}
}

func InitConfig(envfile string) {
	err := godotenv.Load(envfile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Error loading %s file: %s", envfile, err))
	}
	config = readAppConfig()

	Logger = NewLogger()
	DB = connectToPostgres(config.MainDatabase.Host, config.MainDatabase.User, config.MainDatabase.Password, config.MainDatabase.DatabaseName, config.MainDatabase.Port, config.MainDatabase.SSLMode)
	if config.RedisConfig.Host != "" {
		Redis = connectToRedis(config.RedisConfig.Host, config.RedisConfig.Port, config.RedisConfig.Password, config.RedisConfig.DB)
	} else {
		Logger.Warn().Msg("REDIS_HOST not set, challenge cache disabled")
	}
	Catalog = loadCatalog(config.CatalogFile)
}

func GetConfig() AppConfig {
	return config
}

// GetCatalog returns the loaded block catalog, or the embedded one before
// InitConfig ran.
func GetCatalog() *blocks.Catalog {
	if Catalog == nil {
		return blocks.DefaultCatalog()
	}
	return Catalog
}

func getEnvOrPanic(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set", key)
	}
	return value
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func loadCatalog(path string) *blocks.Catalog {
	if path == "" {
		return blocks.DefaultCatalog()
	}
	file, err := os.Open(path)
	if err != nil {
		Logger.Fatal().Err(err).Str("path", path).Msg("Failed to open block catalog")
	}
	defer file.Close()

	catalog, err := blocks.LoadCatalog(file)
	if err != nil {
		Logger.Fatal().Err(err).Str("path", path).Msg("Invalid block catalog")
	}
	Logger.Info().Str("path", path).Int("blocks", len(catalog.ListAll())).Msg("Block catalog loaded")
	return catalog
}

func connectToPostgres(host string, username string, password string, dbname string, port string, ssl string) *gorm.DB {
	var err error
	var db *gorm.DB
	var conn *sql.DB

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, username, password, dbname, port, ssl)
	if db, err = gorm.Open(postgres.Open(dsn),
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now()
			},
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			}}); err != nil {
		panic(err)
	}
	if conn, err = db.DB(); err != nil {
		panic(err)
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)
	return db
}

// NewLogger builds the console logger every process of the module writes to
func NewLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}
