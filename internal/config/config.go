// Package config provides configuration management for folio using Viper for
// flexible loading from files, environment variables and command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with the FOLIO_ prefix, defaults and validation. It describes where the
// server listens, where content and static assets live, how much each content
// category's Markdown is trusted, and development-only options such as live
// reload.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Trust levels accepted by content.<category>.trust.
const (
	TrustDangerous = "dangerous"
	TrustHardened  = "hardened"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Content     ContentConfig     `mapstructure:"content" yaml:"content"`
	Assets      AssetsConfig      `mapstructure:"assets" yaml:"assets"`
	Site        SiteConfig        `mapstructure:"site" yaml:"site"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Environment     string        `mapstructure:"environment" yaml:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ContentConfig struct {
	Root     string         `mapstructure:"root" yaml:"root"`
	Posts    CategoryConfig `mapstructure:"posts" yaml:"posts"`
	Projects CategoryConfig `mapstructure:"projects" yaml:"projects"`
}

// CategoryConfig locates one content category below ContentConfig.Root.
type CategoryConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Index string `mapstructure:"index" yaml:"index"`
	Trust string `mapstructure:"trust" yaml:"trust"`
}

type AssetsConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

type SiteConfig struct {
	Title          string `mapstructure:"title" yaml:"title"`
	Home           string `mapstructure:"home" yaml:"home"`
	FragmentHeader string `mapstructure:"fragment_header" yaml:"fragment_header"`
}

type DevelopmentConfig struct {
	LiveReload bool `mapstructure:"live_reload" yaml:"live_reload"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Address returns the host:port pair the server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads the configuration collected by viper, fills in defaults and
// validates the result.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults registers every key with v so that FOLIO_* environment variables
// are honoured by Unmarshal even when no config file mentions the key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.environment", d.Server.Environment)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("content.root", d.Content.Root)
	for name, category := range map[string]CategoryConfig{"posts": d.Content.Posts, "projects": d.Content.Projects} {
		v.SetDefault("content."+name+".dir", category.Dir)
		v.SetDefault("content."+name+".index", category.Index)
		v.SetDefault("content."+name+".trust", category.Trust)
	}
	v.SetDefault("assets.dir", d.Assets.Dir)
	v.SetDefault("assets.prefix", d.Assets.Prefix)
	v.SetDefault("site.title", d.Site.Title)
	v.SetDefault("site.home", d.Site.Home)
	v.SetDefault("site.fragment_header", d.Site.FragmentHeader)
	v.SetDefault("development.live_reload", d.Development.LiveReload)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Default returns a configuration holding only default values.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3000
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "production"
	}
	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.Content.Root == "" {
		config.Content.Root = "."
	}
	applyCategoryDefaults(&config.Content.Posts, "posts", TrustDangerous)
	applyCategoryDefaults(&config.Content.Projects, "projects", TrustHardened)

	if config.Assets.Dir == "" {
		config.Assets.Dir = "assets"
	}
	if config.Assets.Prefix == "" {
		config.Assets.Prefix = "/assets/"
	}
	if !strings.HasPrefix(config.Assets.Prefix, "/") {
		config.Assets.Prefix = "/" + config.Assets.Prefix
	}
	if !strings.HasSuffix(config.Assets.Prefix, "/") {
		config.Assets.Prefix += "/"
	}

	if config.Site.Title == "" {
		config.Site.Title = "folio"
	}
	if config.Site.Home == "" {
		config.Site.Home = "/posts"
	}
	if config.Site.FragmentHeader == "" {
		config.Site.FragmentHeader = "HX-Request"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func applyCategoryDefaults(category *CategoryConfig, dir, trust string) {
	if category.Dir == "" {
		category.Dir = dir
	}
	if category.Index == "" {
		category.Index = "index.json"
	}
	if category.Trust == "" {
		category.Trust = trust
	}
	category.Trust = strings.ToLower(category.Trust)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}

	if strings.TrimSpace(config.Assets.Dir) == "" {
		return fmt.Errorf("assets config: empty dir")
	}

	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Port 0 is rejected here; defaults already replaced it.
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 1-65535", config.Port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %q", char)
		}
	}

	switch config.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("unknown environment %q (expected development or production)", config.Environment)
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if strings.TrimSpace(config.Root) == "" {
		return fmt.Errorf("empty root")
	}

	categories := map[string]CategoryConfig{
		"posts":    config.Posts,
		"projects": config.Projects,
	}
	for name, category := range categories {
		if err := validatePath(category.Dir); err != nil {
			return fmt.Errorf("%s: invalid dir '%s': %w", name, category.Dir, err)
		}
		if err := validatePath(category.Index); err != nil {
			return fmt.Errorf("%s: invalid index '%s': %w", name, category.Index, err)
		}
		switch category.Trust {
		case TrustDangerous, TrustHardened:
		default:
			return fmt.Errorf("%s: unknown trust level %q (expected %s or %s)",
				name, category.Trust, TrustDangerous, TrustHardened)
		}
	}

	return nil
}

func validateSiteConfig(config *SiteConfig) error {
	if !strings.HasPrefix(config.Home, "/") || config.Home == "/" {
		return fmt.Errorf("home %q must be an absolute route other than /", config.Home)
	}
	if strings.ContainsAny(config.FragmentHeader, " :\r\n") {
		return fmt.Errorf("fragment_header %q is not a valid header name", config.FragmentHeader)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", config.Format)
	}
	return nil
}

// validatePath validates a relative file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("path must be relative: %s", path)
	}

	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
