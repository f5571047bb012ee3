package types

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AppEnv          string
	LogLevel        string
	WebDir          string
}

type DatabaseConfig struct {
	Name     string
	Host     string
	Port     string
	User     string
	Password string
	SSLMode  string
}

// Enabled reports whether a history database was configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// ProviderConfig selects the generative backend used by both flows
type ProviderConfig struct {
	Name              string
	GenerationTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// ClientConfig configures the codefusion command line client
type ClientConfig struct {
	ServerURL string
	Timeout   time.Duration
}

func validateRequiredEnvs(v *viper.Viper, requiredEnvs []string) error {
	for _, env := range requiredEnvs {
		if v.GetString(env) == "" {
			return fmt.Errorf("%s is required", env)
		}
	}
	return nil
}

func readEnvFile(v *viper.Viper, path string) error {
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Print("No config file found, falling back to environment variables")
	}
	return nil
}

// LoadConfig reads server configuration from an optional .env file and the environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with an explicit env file path
func LoadConfigFrom(envFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("WEB_DIR", "./web")
	v.SetDefault("PROVIDER", "gemini")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-5-nano")
	v.SetDefault("GENERATION_TIMEOUT", "30s")
	v.SetDefault("READ_TIMEOUT", "30s")
	v.SetDefault("WRITE_TIMEOUT", "2m")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	if err := readEnvFile(v, envFile); err != nil {
		return nil, err
	}

	// the history store is optional, but a partial database setup is a mistake
	if v.GetString("DB_HOST") != "" {
		requiredEnvs := []string{
			"DB_NAME",
			"DB_PORT",
			"DB_USER",
			"DB_PASSWORD",
			"DB_SSLMODE",
		}
		if err := validateRequiredEnvs(v, requiredEnvs); err != nil {
			return nil, err
		}
	}

	geminiKey := v.GetString("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = v.GetString("GOOGLE_GEMINI_KEY")
	}

	config := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetString("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
			AppEnv:          v.GetString("APP_ENV"),
			LogLevel:        v.GetString("LOG_LEVEL"),
			WebDir:          v.GetString("WEB_DIR"),
		},
		Database: DatabaseConfig{
			Name:     v.GetString("DB_NAME"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Provider: ProviderConfig{
			Name:              strings.ToLower(v.GetString("PROVIDER")),
			GenerationTimeout: v.GetDuration("GENERATION_TIMEOUT"),
		},
		OpenAI: OpenAIConfig{
			APIKey: v.GetString("OPENAI_API_KEY"),
			Model:  v.GetString("OPENAI_MODEL"),
		},
		Gemini: GeminiConfig{
			APIKey: geminiKey,
			Model:  v.GetString("GEMINI_MODEL"),
		},
	}

	switch config.Provider.Name {
	case "gemini":
		if config.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if config.OpenAI.APIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return nil, fmt.Errorf("unsupported PROVIDER %q", config.Provider.Name)
	}

	return config, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// LoadClientConfig reads client settings from the environment, letting the
// caller-provided viper instance carry flag bindings.
func LoadClientConfig(v *viper.Viper) (*ClientConfig, error) {
	v.SetDefault("CODEFUSION_SERVER_URL", "http://localhost:5000")
	v.SetDefault("CODEFUSION_TIMEOUT", "60s")
	v.AutomaticEnv()

	serverURL := strings.TrimRight(strings.TrimSpace(v.GetString("CODEFUSION_SERVER_URL")), "/")
	if serverURL == "" {
		return nil, errors.New("CODEFUSION_SERVER_URL is required")
	}
	timeout := v.GetDuration("CODEFUSION_TIMEOUT")
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid CODEFUSION_TIMEOUT %q", v.GetString("CODEFUSION_TIMEOUT"))
	}
	return &ClientConfig{ServerURL: serverURL, Timeout: timeout}, nil
}
