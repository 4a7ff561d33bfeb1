package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Minio    MinioConfig    `yaml:"minio"`
	Auth     AuthConfig     `yaml:"auth"`
	CRM      CRMConfig      `yaml:"crm"`
	NLP      NLPConfig      `yaml:"nlp"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type CRMConfig struct {
	Salesforce SalesforceConfig `yaml:"salesforce"`
	HubSpot    HubSpotConfig    `yaml:"hubspot"`
}

type SalesforceConfig struct {
	LoginURL      string `yaml:"login_url"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	SecurityToken string `yaml:"security_token"`
}

type HubSpotConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type NLPConfig struct {
	// PreloadRecognizer builds the entity recognizer at startup instead
	// of on the first upload that needs it.
	PreloadRecognizer bool `yaml:"preload_recognizer"`
	// DisableRecognizer forces the pattern-only party extraction path.
	DisableRecognizer bool `yaml:"disable_recognizer"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "postsales.db"
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.CRM.Salesforce.LoginURL == "" {
		cfg.CRM.Salesforce.LoginURL = "https://login.salesforce.com"
	}
	if cfg.CRM.HubSpot.BaseURL == "" {
		cfg.CRM.HubSpot.BaseURL = "https://api.hubapi.com"
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
