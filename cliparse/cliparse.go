package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store types
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Defaults
const (
	DefaultPort      = 3000
	DefaultDataFile  = "data.json"
	DefaultSQLiteURL = "acadamist.db"
	DefaultEnvFile   = ".env"
)

type Config struct {
	Port        int
	DataFile    string
	StoreType   string
	DatabaseURL string
	StaticDir   string
	AdminKey    string
}

// FileConfig is the optional YAML config file layout.
type FileConfig struct {
	Port        int    `yaml:"port"`
	DataFile    string `yaml:"data_file"`
	StoreType   string `yaml:"store_type"`
	DatabaseURL string `yaml:"database_url"`
	StaticDir   string `yaml:"static_dir"`
	AdminKey    string `yaml:"admin_key"`
}

// ParseFlags builds the config from flags, then environment, then the
// optional YAML file, then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configFile, envFile string

	fs := flag.NewFlagSet("acadamist", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DataFile, "f", "", "JSON data file (json store)")
	fs.StringVar(&cfg.StoreType, "t", "", "Store type (json, sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (sqlite or postgres store)")
	fs.StringVar(&cfg.StaticDir, "static", "", "Directory of static site files to serve")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Key required to clear votes (prefer env)")
	fs.StringVar(&configFile, "config", "", "YAML config file")
	fs.StringVar(&envFile, "env-file", DefaultEnvFile, "dotenv file loaded before reading the environment")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	var file FileConfig
	if configFile != "" {
		var err error
		file, err = LoadFile(configFile)
		if err != nil {
			return Config{}, err
		}
	}

	// Fall back to environment variables, then the config file
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Port != 0 {
			cfg.Port = file.Port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.DataFile = firstNonEmpty(cfg.DataFile, os.Getenv("DATA_FILE"), file.DataFile, DefaultDataFile)
	cfg.StoreType = firstNonEmpty(cfg.StoreType, os.Getenv("STORE_TYPE"), file.StoreType, StoreJSON)
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), file.DatabaseURL)
	cfg.StaticDir = firstNonEmpty(cfg.StaticDir, os.Getenv("STATIC_DIR"), file.StaticDir)
	cfg.AdminKey = firstNonEmpty(cfg.AdminKey, os.Getenv("ADMIN_KEY"), file.AdminKey)

	switch cfg.StoreType {
	case StoreJSON:
	case StoreSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultSQLiteURL
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for postgres store (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q (want json, sqlite or postgres)", cfg.StoreType)
	}

	return cfg, nil
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
