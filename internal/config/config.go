package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	AI          AIConfig          `mapstructure:"ai"`
	Image       ImageConfig       `mapstructure:"image"`
	Vision      VisionConfig      `mapstructure:"vision"`
	Search      SearchConfig      `mapstructure:"search"`
	Application ApplicationConfig `mapstructure:"application"`
}

type ApplicationConfig struct {
	Name        string        `mapstructure:"name"`
	Version     string        `mapstructure:"version"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Mode        string        `mapstructure:"mode"` // gin mode: debug, release, test
	Author      string        `mapstructure:"author"`
	Language    string        `mapstructure:"language"`
	MaxUploadMB int64         `mapstructure:"max_upload_mb"`
	Storage     StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	// Stage is the hot folder watched for dropped requests; empty disables the observer.
	Stage  string `mapstructure:"stage"`
	Output string `mapstructure:"output"`
}

type AIConfig struct {
	ActiveProvider string                      `mapstructure:"active_provider"`
	Timeout        time.Duration               `mapstructure:"timeout"`
	Providers      map[string]ProviderSettings `mapstructure:"providers"`
}

type ProviderSettings struct {
	Driver      string  `mapstructure:"driver"` // gemini, openai, claude, mock
	Key         string  `mapstructure:"key"`
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type ImageConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Driver   string        `mapstructure:"driver"` // openai, replicate
	Key      string        `mapstructure:"key"`
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Size     string        `mapstructure:"size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type VisionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Provider names an entry of ai.providers; only the openai driver supports images.
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type SearchConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Endpoint   string        `mapstructure:"endpoint"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Options  string `mapstructure:"options"`
}

// Enabled reports whether a usage-log database has been configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

func (c *DatabaseConfig) GetConnectStr() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, sslmode)

	if c.Options != "" {
		// Basic URL encoding for the options value: space -> %20
		encodedOptions := strings.ReplaceAll(c.Options, " ", "%20")
		connStr += fmt.Sprintf("&options=%s", encodedOptions)
	}

	return connStr
}

// Active returns the settings of the active AI provider.
func (c *AIConfig) Active() (ProviderSettings, bool) {
	s, ok := c.Providers[c.ActiveProvider]
	return s, ok
}

// Addr is the listen address of the HTTP server.
func (c *ApplicationConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Environment variable mappings
var mappings = []struct {
	key, env string
}{
	{"database.url", "DB_URL"},
	{"database.host", "PG_HOST"},
	{"database.port", "PG_PORT"},
	{"database.user", "PG_USER"},
	{"database.password", "PG_PASSWORD"},
	{"database.dbname", "PG_DB"},
	{"database.sslmode", "PG_SSLMODE"},
	{"database.options", "PG_OPTIONS"},
	{"application.host", "HOST"},
	{"application.port", "PORT"},
	{"application.mode", "GIN_MODE"},
	{"application.language", "APP_LANG"},
	{"ai.active_provider", "AI_PROVIDER"},
	{"ai.timeout", "AI_TIMEOUT"},

	// Storage
	{"application.storage.stage", "STORAGE_STAGE"},
	{"application.storage.output", "STORAGE_OUTPUT"},

	// AI Providers
	{"ai.providers.gemini.key", "GEMINI_KEY"},
	{"ai.providers.gemini.model", "GEMINI_MODEL"},
	{"ai.providers.openai.key", "OPENAI_API_KEY"},
	{"ai.providers.openai.model", "OPENAI_MODEL"},
	{"ai.providers.openai.endpoint", "OPENAI_BASE_URL"},
	{"ai.providers.claude.key", "ANTHROPIC_API_KEY"},
	{"ai.providers.claude.model", "CLAUDE_MODEL"},

	// Images
	{"image.enabled", "IMAGE_ENABLED"},
	{"image.driver", "IMAGE_DRIVER"},
	{"image.model", "IMAGE_MODEL"},
	{"image.timeout", "IMAGE_TIMEOUT"},

	// Vision & search
	{"vision.enabled", "VISION_ENABLED"},
	{"vision.provider", "VISION_PROVIDER"},
	{"search.enabled", "SEARCH_ENABLED"},
	{"search.endpoint", "SEARCH_ENDPOINT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.name", "DeckForge")
	v.SetDefault("application.version", "1.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.mode", "debug")
	v.SetDefault("application.language", "en")
	v.SetDefault("application.max_upload_mb", 20)
	v.SetDefault("application.storage.output", "output")

	v.SetDefault("ai.active_provider", "openai")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.providers.openai.driver", "openai")
	v.SetDefault("ai.providers.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.providers.openai.temperature", 0.7)
	v.SetDefault("ai.providers.openai.max_tokens", 3000)
	v.SetDefault("ai.providers.gemini.driver", "gemini")
	v.SetDefault("ai.providers.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.providers.claude.driver", "claude")
	v.SetDefault("ai.providers.claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.providers.claude.max_tokens", 4096)

	v.SetDefault("image.enabled", false)
	v.SetDefault("image.driver", "openai")
	v.SetDefault("image.model", "dall-e-3")
	v.SetDefault("image.size", "1024x1024")
	v.SetDefault("image.timeout", 30*time.Second)

	v.SetDefault("vision.provider", "openai")
	v.SetDefault("vision.model", "gpt-4o-mini")

	v.SetDefault("search.endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 15*time.Second)
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found, using system environment variables")
	}

	return load(viper.GetViper(), "config.yaml")
}

func load(v *viper.Viper, file string) (*Config, error) {
	v.SetConfigFile(file) // Support optional config.yaml
	v.AutomaticEnv()

	for _, m := range mappings {
		v.BindEnv(m.key, m.env)
	}
	v.BindEnv("image.key", "IMAGE_API_KEY", "REPLICATE_API_TOKEN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Ignore if config.yaml is missing
		log.Printf("Note: %s not loaded (%v), using defaults and environment", file, err)
	} else {
		log.Printf("Using configuration file: %s", v.ConfigFileUsed())
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.AI.ActiveProvider == "" {
		cfg.AI.ActiveProvider = "openai"
	}

	// An image key falls back to the OpenAI key when DALL-E is the image driver.
	if cfg.Image.Key == "" && cfg.Image.Driver == "openai" {
		if p, ok := cfg.AI.Providers["openai"]; ok {
			cfg.Image.Key = p.Key
		}
	}

	return &cfg, nil
}

// WatchConfig reloads config.yaml on change and hands the fresh config to onChange.
func WatchConfig(onChange func(*Config)) {
	v := viper.GetViper()

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("Config file changed: %s (%s)", e.Name, e.Op)

		cfg, err := decode(v)
		if err != nil {
			log.Printf("Failed to reload config: %v", err)
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
