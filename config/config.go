package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	ProductAPI struct {
		BaseURL     string
		Timeout     time.Duration
		ReloadLimit int // сколько записей запрашивать при перезагрузке каталога
	}

	Catalog struct {
		PageSize int
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	Kafka struct {
		Brokers      []string
		GroupID      string
		ActionsTopic string
	}

	Session struct {
		PresetTTL time.Duration // срок жизни пресетов фильтров
	}

	Export struct {
		ChromePath string
		PDFTimeout time.Duration
	}

	Security struct {
		CORSAllowOrigins []string
		RateLimitRPM     int // запросов в минуту с одного IP, 0 отключает лимит
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	var cfg Config

	viper.SetConfigName(configFile)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults()
	bindEnvVariables()

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = viper.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults() {
	viper.SetDefault("appName", "catalog-service")
	viper.SetDefault("version", "1.0.0")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("env", "development")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "2m") // выгрузка PDF может быть долгой
	viper.SetDefault("server.shutdownTimeout", "5s")

	viper.SetDefault("productapi.baseURL", "http://localhost:9000/api")
	viper.SetDefault("productapi.timeout", "15s")
	viper.SetDefault("productapi.reloadLimit", 1000)

	viper.SetDefault("catalog.pageSize", 20)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.groupID", "catalog-service")
	viper.SetDefault("kafka.actionsTopic", "seller-pending-actions")

	viper.SetDefault("session.presetTTL", "720h")

	viper.SetDefault("export.chromePath", "")
	viper.SetDefault("export.pdfTimeout", "30s")

	viper.SetDefault("security.corsAllowOrigins", []string{"*"})
	viper.SetDefault("security.rateLimitRPM", 300)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables() {
	viper.BindEnv("appName", "APP_NAME")
	viper.BindEnv("version", "APP_VERSION")
	viper.BindEnv("logLevel", "LOG_LEVEL")
	viper.BindEnv("env", "APP_ENV")

	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")

	viper.BindEnv("productapi.baseURL", "PRODUCT_API_BASE_URL")
	viper.BindEnv("productapi.timeout", "PRODUCT_API_TIMEOUT")
	viper.BindEnv("productapi.reloadLimit", "PRODUCT_API_RELOAD_LIMIT")

	viper.BindEnv("catalog.pageSize", "CATALOG_PAGE_SIZE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")
	viper.BindEnv("kafka.actionsTopic", "KAFKA_ACTIONS_TOPIC")

	viper.BindEnv("session.presetTTL", "SESSION_PRESET_TTL")

	viper.BindEnv("export.chromePath", "CHROME_PATH")
	viper.BindEnv("export.pdfTimeout", "EXPORT_PDF_TIMEOUT")

	viper.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
	viper.BindEnv("security.rateLimitRPM", "RATE_LIMIT_RPM")
}
