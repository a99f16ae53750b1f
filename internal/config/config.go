// Package config loads the toolplan configuration file.
//
// The file is YAML with three sections: neo4j (graph store connection),
// planner (search bounds and ranking constants) and log. Missing keys keep
// the values of Default.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PasswordEnv overrides neo4j.password when set.
const PasswordEnv = "TOOLPLAN_NEO4J_PASSWORD"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Catalog is the path of a catalog definition file. When set, the planner
	// runs on an in-memory catalog instead of Neo4j.
	Catalog string  `yaml:"catalog"`
	Neo4j   Neo4j   `yaml:"neo4j"`
	Planner Planner `yaml:"planner"`
	Log     Log     `yaml:"log"`
}

type Neo4j struct {
	URI                     string        `yaml:"uri"`
	Username                string        `yaml:"username"`
	Password                string        `yaml:"password"`
	Database                string        `yaml:"database"`
	MaxConnectionPoolSize   int           `yaml:"max_connection_pool_size"`
	ConnectionTimeout       time.Duration `yaml:"connection_timeout"`
	MaxTransactionRetryTime time.Duration `yaml:"max_transaction_retry_time"`
}

type Planner struct {
	QueryTimeout     time.Duration `yaml:"query_timeout"`
	MaxPathEdges     int           `yaml:"max_path_edges"`
	TopK             int           `yaml:"top_k"`
	MaxInsertions    int           `yaml:"max_insertions"`
	TargetCitation   float64       `yaml:"target_citation"`
	ReplacementLimit int           `yaml:"replacement_limit"`
	Concurrency      int           `yaml:"concurrency"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Neo4j: Neo4j{
			URI:                     "bolt://localhost:7687",
			Username:                "neo4j",
			MaxConnectionPoolSize:   50,
			ConnectionTimeout:       30 * time.Second,
			MaxTransactionRetryTime: 30 * time.Second,
		},
		Planner: Planner{
			QueryTimeout:     30 * time.Second,
			MaxPathEdges:     7,
			TopK:             5,
			MaxInsertions:    4,
			TargetCitation:   10000,
			ReplacementLimit: 10,
			Concurrency:      4,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the file at path on top of Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to read config file %s", path)
		}

		err = yaml.Unmarshal(raw, &cfg)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to parse config file %s", path)
		}
	}

	if password, ok := os.LookupEnv(PasswordEnv); ok {
		cfg.Neo4j.Password = password
	}

	err := cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the bounds of every section. Neo4j settings are only
// checked when no catalog file is configured.
func (c Config) Validate() error {
	if c.Catalog == "" {
		if c.Neo4j.URI == "" {
			return errors.Wrap(ErrInvalidConfig, "neo4j.uri cannot be empty")
		}

		if c.Neo4j.ConnectionTimeout <= 0 {
			return errors.Wrap(ErrInvalidConfig, "neo4j.connection_timeout must be positive")
		}
	}

	p := c.Planner

	switch {
	case p.QueryTimeout <= 0:
		return errors.Wrap(ErrInvalidConfig, "planner.query_timeout must be positive")
	case p.MaxPathEdges < 0:
		return errors.Wrap(ErrInvalidConfig, "planner.max_path_edges cannot be negative")
	case p.TopK <= 0:
		return errors.Wrap(ErrInvalidConfig, "planner.top_k must be positive")
	case p.MaxInsertions < 0:
		return errors.Wrap(ErrInvalidConfig, "planner.max_insertions cannot be negative")
	case p.ReplacementLimit <= 0:
		return errors.Wrap(ErrInvalidConfig, "planner.replacement_limit must be positive")
	case p.Concurrency <= 0:
		return errors.Wrap(ErrInvalidConfig, "planner.concurrency must be positive")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return errors.Wrapf(ErrInvalidConfig, "log.format %q must be json or text", c.Log.Format)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalidConfig, "log.level %q must be debug, info, warn or error", c.Log.Level)
	}

	return nil
}
