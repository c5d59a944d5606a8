package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey возвращается, когда не задан ключ OpenAI. Это фатальная ошибка запуска.
var ErrMissingAPIKey = errors.New("OpenAI API key not found. Please set OPENAI_API_KEY in your environment variables")

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага: development-логгер
	StubAI    bool `env:"STUB_AI"`    // Не ходить в OpenAI, отвечать заглушкой

	OpenAI OpenAIConfig

	// Веб-интерфейс
	BindAddr string `env:"BIND_ADDR" validate:"required"` // Адрес слушателя, напр. 127.0.0.1:8501

	// Сессии
	SessionTTL           time.Duration `env:"SESSION_TTL" validate:"gt=0"`            // Через сколько простоя сессия удаляется
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" validate:"gt=0"` // Периодичность очистки сессий

	// Значения настроек по умолчанию для новой сессии
	DefaultMode  string `env:"DEFAULT_MODE" validate:"oneof=conversation grammar vocabulary writing"`
	DefaultLevel string `env:"DEFAULT_LEVEL" validate:"oneof=beginner intermediate advanced"`

	// Сколько последних реплик истории отправлять вместе с запросом: целые пары, не больше 6
	HistoryWindow int `env:"HISTORY_WINDOW" validate:"oneof=2 4 6"`
}

// OpenAIConfig параметры подключения к OpenAI-совместимому API.
type OpenAIConfig struct {
	APIKey         string        `env:"OPENAI_API_KEY" validate:"required"`
	BaseURL        string        `env:"OPENAI_BASE_URL" validate:"omitempty,url"` // Пусто — адрес по умолчанию из SDK
	Model          string        `env:"OPENAI_MODEL" validate:"required"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"` // Таймаут одного запроса
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode: false,
		StubAI:    false,
		OpenAI: OpenAIConfig{
			Model:          "gpt-3.5-turbo",
			RequestTimeout: 30 * time.Second,
		},
		BindAddr:             "127.0.0.1:8501",
		SessionTTL:           2 * time.Hour,
		SessionSweepInterval: 5 * time.Minute,
		DefaultMode:          "conversation",
		DefaultLevel:         "intermediate",
		HistoryWindow:        6,
	}
}

// NewConfig загружает конфигурацию приложения: дефолты, .env, окружение, флаги.
// Отсутствие ключа API — ошибка ErrMissingAPIKey.
func NewConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("teacher", flag.ContinueOnError)
	fs.BoolVar(&c.DebugMode, "debug-mode", c.DebugMode, "включить режим дебага")
	fs.BoolVar(&c.StubAI, "stub", c.StubAI, "отвечать заглушкой вместо запросов в OpenAI")
	fs.StringVar(&c.OpenAI.BaseURL, "openai-base-url", c.OpenAI.BaseURL, "базовый URL OpenAI-совместимого API")
	fs.StringVar(&c.OpenAI.Model, "openai-model", c.OpenAI.Model, "модель для всех запросов")
	fs.DurationVar(&c.OpenAI.RequestTimeout, "request-timeout", c.OpenAI.RequestTimeout, "таймаут одного запроса к API, напр. 30s")
	fs.StringVar(&c.BindAddr, "bind-addr", c.BindAddr, "адрес веб-интерфейса (напр. 127.0.0.1:8501)")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "время простоя, после которого сессия удаляется")
	fs.DurationVar(&c.SessionSweepInterval, "session-sweep-interval", c.SessionSweepInterval, "периодичность очистки сессий")
	fs.StringVar(&c.DefaultMode, "default-mode", c.DefaultMode, "режим по умолчанию: conversation|grammar|vocabulary|writing")
	fs.StringVar(&c.DefaultLevel, "default-level", c.DefaultLevel, "уровень по умолчанию: beginner|intermediate|advanced")
	fs.IntVar(&c.HistoryWindow, "history-window", c.HistoryWindow, "сколько последних реплик отправлять с запросом")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	c.DefaultMode = strings.ToLower(strings.TrimSpace(c.DefaultMode))
	c.DefaultLevel = strings.ToLower(strings.TrimSpace(c.DefaultLevel))
	return nil
}

// Validate проверяет конфигурацию. Ключ API проверяется отдельно, чтобы
// вернуть понятную пользователю ошибку.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" && !c.StubAI {
		return ErrMissingAPIKey
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	var err error
	if c.StubAI {
		// В режиме заглушки ключ не нужен
		err = v.StructExcept(c, "OpenAI.APIKey")
	} else {
		err = v.Struct(c)
	}
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	return nil
}
