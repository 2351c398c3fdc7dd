package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides of file keys, e.g.
// POLYPROMPT_SERVER_ADDR overrides server.addr.
const EnvPrefix = "POLYPROMPT"

// File is the application configuration file.
type File struct {
	Server    ServerConfig             `mapstructure:"server"`
	HTTP      HTTPConfig               `mapstructure:"http"`
	Dispatch  DispatchConfig           `mapstructure:"dispatch"`
	Database  DatabaseConfig           `mapstructure:"database"`
	Pricing   map[string]Price         `mapstructure:"pricing"`
	Agents    []AgentConfig            `mapstructure:"agents"`
	Providers map[string]PartialConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type DispatchConfig struct {
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	EstimateTokens bool          `mapstructure:"estimate_tokens"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // empty disables history
}

// Price is a per-million-token price override for one model.
type Price struct {
	Input  float64 `mapstructure:"input"`
	Output float64 `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("http.timeout", 120*time.Second)
	v.SetDefault("dispatch.retry_delay", time.Second)
	v.SetDefault("dispatch.estimate_tokens", true)
	v.SetDefault("database.path", "")
}

// Load reads path (YAML) with environment overrides. An empty path yields the
// defaults plus environment overrides only.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks agent ids are present and unique.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Agents))
	for i, agent := range f.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent #%d has no id", i+1)
		}
		if agent.Provider == "" {
			return fmt.Errorf("agent %q has no provider", agent.ID)
		}
		if seen[agent.ID] {
			return fmt.Errorf("agent %q defined twice", agent.ID)
		}
		seen[agent.ID] = true
	}
	return nil
}

// Store builds a MemoryStore holding the file's agents and provider defaults.
func (f *File) Store() *MemoryStore {
	store := NewMemoryStore()
	for _, agent := range f.Agents {
		store.PutAgent(agent)
	}
	for id, defaults := range f.Providers {
		store.PutProviderDefaults(id, defaults)
	}
	return store
}

// LoadDotEnv loads .env files into the process environment so provider
// credentials such as OPENAI_API_KEY reach the resolver baseline. Variables
// already set are left untouched; a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}
