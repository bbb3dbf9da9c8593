package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config chứa toàn bộ cấu hình của ứng dụng, đọc một lần khi khởi động
type Config struct {
	Env         string        `env:"APP_ENV" env-default:"development"`
	Port        string        `env:"PORT" env-default:"3000"`
	Storage     string        `env:"STORAGE" env-default:"postgres"`
	DatabaseURL string        `env:"DATABASE_URL"`
	JWTSecret   string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" env-default:"1h"`
	BcryptCost  int           `env:"BCRYPT_COST" env-default:"10"`
	CORSOrigins string        `env:"CORS_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000"`
	LogLevel    string        `env:"LOG_LEVEL"`

	MQTTURL         string `env:"MQTT_URL"`
	MQTTTopicPrefix string `env:"MQTT_TOPIC_PREFIX" env-default:"tasktracker"`
}

// LoadENV nạp biến môi trường từ các file .env (nếu có).
// Ở production không đọc file .env.
func LoadENV(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load đọc .env (ngoài production) rồi parse biến môi trường vào Config
func Load(envFiles ...string) (*Config, error) {
	if !strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		if err := LoadENV(envFiles...); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("APP_ENV must be development, test or production, got %q", c.Env)
	}
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("you must set your 'DATABASE_URL' environmental variable")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// IsProduction trả về true khi chạy ở môi trường production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins trả về danh sách origin cho CORS, phân tách bằng dấu phẩy
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
