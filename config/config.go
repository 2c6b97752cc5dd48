// Package config loads schemasync.yaml with viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ridoystarlord/schemasync/schema"
)

const maxWalkDepth = 25

// FileNames are looked for, in order, while discovering the config file.
var FileNames = []string{"schemasync.yaml", "schemasync.yml"}

// Config is the schemasync configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Schema      SchemaConfig      `mapstructure:"schema"`
	Migrations  MigrationsConfig  `mapstructure:"migrations"`
	Log         LogConfig         `mapstructure:"log"`
	TypeAliases map[string]string `mapstructure:"type_aliases"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// SchemaConfig says where the desired schema is declared and which database
// schema it describes.
type SchemaConfig struct {
	File      string `mapstructure:"file"`
	ModelsDir string `mapstructure:"models_dir"`
	Name      string `mapstructure:"name"`
}

// MigrationsConfig holds generated migration file settings.
type MigrationsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load discovers and loads configuration with precedence
// env > config file > defaults. Flags are applied by the caller.
//
// It returns the config and the path of the file read, empty if none.
func Load(explicitPath string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCHEMASYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "SCHEMASYNC_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, "", err
	}
	if err := v.BindEnv("log.level", "SCHEMASYNC_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, "", err
	}

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("schema.file", "schema.yaml")
	v.SetDefault("schema.models_dir", "")
	v.SetDefault("schema.name", "public")
	v.SetDefault("migrations.dir", "migrations")
	v.SetDefault("log.level", "info")
	v.SetDefault("type_aliases", map[string]string{})
}

// findConfigFile validates explicitPath, or walks up from the working
// directory looking for a config file, stopping at a .git boundary.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// Aliases returns the built-in type aliases overridden by the configured ones.
func (c *Config) Aliases() schema.TypeAliases {
	return schema.DefaultTypeAliases().Merge(c.TypeAliases)
}

// SchemaOptions returns the canonicalisation options the config implies.
func (c *Config) SchemaOptions() []schema.Option {
	return []schema.Option{schema.WithTypeAliases(c.Aliases())}
}

// Template is written by the init command.
const Template = `# schemasync configuration
database:
  # Falls back to DATABASE_URL (also read from .env).
  url: ""
schema:
  file: schema.yaml
  # Directory of Go structs tagged with schemasync:"..." used instead of file when set.
  models_dir: ""
  name: public
migrations:
  dir: migrations
log:
  level: info
# Extra type aliases merged over the built-in table.
type_aliases: {}
`
