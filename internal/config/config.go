package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultAPIBaseURL    = "http://localhost:5000"
	DefaultSignupTimeout = 10 * time.Second
	DefaultPort          = "8081"

	SessionDriverMemory   = "memory"
	SessionDriverPostgres = "postgres"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port           string        `yaml:"port"`
	APIBaseURL     string        `yaml:"api_base_url"`
	SignupTimeout  time.Duration `yaml:"signup_timeout"` // transport timeout for POST /api/auth/signup
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	FormIdleTTL    time.Duration `yaml:"form_idle_ttl"` // forms untouched for longer are dropped
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	TemplatesPath  string        `yaml:"templates_path"`
	ContentPath    string        `yaml:"content_path"`
	StaticPath     string        `yaml:"static_path"`
	Session        Session       `yaml:"session"`
}

type Session struct {
	Driver string `yaml:"driver"` // memory | postgres
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	Pg         Pg     `yaml:"pg"`
	SessionKey string `yaml:"session_key"` // base64, 32 bytes; seals stored tokens when set
}

func (c *Config) SessionDriver() string {
	if c.Public.Session.Driver == "" {
		return SessionDriverMemory
	}
	return c.Public.Session.Driver
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

// applyDefaults fills optional fields left empty in public.yaml.
func (p *Public) applyDefaults() {
	if p.Port == "" {
		p.Port = DefaultPort
	}
	if p.APIBaseURL == "" {
		p.APIBaseURL = DefaultAPIBaseURL
	}
	if p.SignupTimeout == 0 {
		p.SignupTimeout = DefaultSignupTimeout
	}
	if p.FormIdleTTL == 0 {
		p.FormIdleTTL = 30 * time.Minute
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.TemplatesPath == "" {
		p.TemplatesPath = "templates"
	}
	if p.ContentPath == "" {
		p.ContentPath = "content"
	}
	if p.StaticPath == "" {
		p.StaticPath = "static"
	}
}

func (c *Config) validate() error {
	if c.Public.SignupTimeout < 0 {
		return fmt.Errorf("signup_timeout must be positive, got %s", c.Public.SignupTimeout)
	}
	switch c.SessionDriver() {
	case SessionDriverMemory:
	case SessionDriverPostgres:
		pg := c.Private.Pg
		if pg.Host == "" || pg.Port == 0 || pg.User == "" || pg.Dbname == "" {
			return fmt.Errorf("session driver %q requires pg host, port, user and dbname in private.yaml", SessionDriverPostgres)
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Public.Session.Driver)
	}
	return nil
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// PORT and SESSION_KEY from the environment override the files.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if port := os.Getenv("PORT"); port != "" {
		public.Port = port
	}
	if key := os.Getenv("SESSION_KEY"); key != "" {
		private.SessionKey = key
	}
	public.applyDefaults()

	cfg := &Config{Public: public, Private: private}
	if err := cfg.validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
