// Package config loads and validates the anisense configuration.
//
// Configuration comes from a YAML file with ${VAR} environment expansion,
// or from built-in zero-config defaults when no file is given. Secrets
// (model and search API keys) are always taken from the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAniListEndpoint is the public AniList GraphQL endpoint.
	DefaultAniListEndpoint = "https://graphql.anilist.co"

	// DefaultLinkupEndpoint is the Linkup search API endpoint.
	DefaultLinkupEndpoint = "https://api.linkup.so/v1/search"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Search  SearchConfig  `yaml:"search"`
	AniList AniListConfig `yaml:"anilist"`
	MCP     MCPConfig     `yaml:"mcp"`

	// TagsFile is the local tag snapshot read once at startup.
	TagsFile string `yaml:"tags_file"`

	Logger LoggerConfig `yaml:"logger"`
}

// ServerConfig configures the HTTP front door.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns the host:port listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ModelConfig configures the LLM provider backing the agent runtime.
type ModelConfig struct {
	Name    string `yaml:"name"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// AniListConfig configures the AniList GraphQL gateway.
type AniListConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MCPConfig configures the stdio tool subprocess.
type MCPConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// LoggerConfig configures logging.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Default returns the zero-config defaults used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Search.APIKey = os.Getenv("LINKUP_API_KEY")
	return cfg
}

// SetDefaults fills unset fields with their default values.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Model.Name == "" {
		c.Model.Name = "gpt-4o-mini"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = DefaultLinkupEndpoint
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 3
	}
	if c.AniList.Endpoint == "" {
		c.AniList.Endpoint = DefaultAniListEndpoint
	}
	if c.AniList.Timeout == 0 {
		c.AniList.Timeout = 30 * time.Second
	}
	if c.MCP.Command == "" {
		c.MCP.Command = "npx"
		c.MCP.Args = []string{"-y", "anilist-mcp"}
	}
	if c.TagsFile == "" {
		c.TagsFile = "tags.json"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "simple"
	}
}

// Validate checks that the configuration is usable for serving.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("model api key is not set (OPENAI_API_KEY)")
	}
	if c.Search.APIKey == "" {
		return fmt.Errorf("search api key is not set (LINKUP_API_KEY)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.MCP.Command == "" {
		return fmt.Errorf("mcp command is not set")
	}
	if c.TagsFile == "" {
		return fmt.Errorf("tags file is not set")
	}
	return nil
}

// Load reads a YAML config file, expanding ${VAR} and ${VAR:-default}
// references against the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SetDefaults()

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("LINKUP_API_KEY")
	}

	return cfg, nil
}

var envVarPatterns = struct {
	withDefault *regexp.Regexp
	braced      *regexp.Regexp
}{
	withDefault: regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`),
	braced:      regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`),
}

func expandEnvVars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	s = envVarPatterns.withDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.withDefault.FindStringSubmatch(match)
		if len(parts) == 3 {
			if val := os.Getenv(parts[1]); val != "" {
				return val
			}
			return parts[2]
		}
		return match
	})

	s = envVarPatterns.braced.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.braced.FindStringSubmatch(match)
		if len(parts) == 2 {
			return os.Getenv(parts[1])
		}
		return match
	})

	return s
}
