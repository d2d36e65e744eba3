package boot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env           string `env:"ENV,default=dev"`
	DataDir       string `env:"DATA_DIR,default=."`
	ProviderDB    string `env:"PROVIDER_DB,default=telephony.db"`
	WatchProvider bool   `env:"WATCH_PROVIDER,default=false"`
	Server        struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	Auth struct {
		TokenSecret string `env:"AUTH_TOKEN_SECRET"`
	}
}

func Load() (*Config, error) {
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith reads the config from an arbitrary lookuper, tests use envconfig.MapLookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	config := &Config{}
	if err := envconfig.ProcessWith(ctx, config, lookuper); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) DataDirectory() string {
	return c.DataDir
}

// ProviderPath resolves PROVIDER_DB relative to DATA_DIR unless it is absolute.
func (c *Config) ProviderPath() string {
	if filepath.IsAbs(c.ProviderDB) {
		return c.ProviderDB
	}
	return filepath.Join(c.DataDir, c.ProviderDB)
}
