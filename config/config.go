/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads backend selection and connection settings from a YAML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/recordkit/errors"
)

// Supported backend names.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

var knownBackends = map[string]bool{
	BackendMemory:   true,
	BackendSQLite:   true,
	BackendDynamoDB: true,
}

// Config selects a storage backend and holds its parameters.
type Config struct {
	Backend            string `yaml:"backend"`
	PreparedStatements bool   `yaml:"prepared_statements"`

	SQLite SQLite `yaml:"sqlite"`
	AWS    AWS    `yaml:"aws"`
}

// SQLite holds the sqlite backend parameters.
type SQLite struct {
	DSN string `yaml:"dsn"`
}

// AWS holds the DynamoDB backend parameters. Empty keys use the default
// credential chain.
type AWS struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Table     string `yaml:"table"`
	Endpoint  string `yaml:"endpoint"`
}

// Default returns the configuration used when nothing is set: an in-memory
// SQLite database with unprepared lookups.
func Default() Config {
	return Config{
		Backend: BackendSQLite,
		SQLite:  SQLite{DSN: ":memory:"},
		AWS:     AWS{Region: "us-east-1"},
	}
}

// Load reads the configuration like Read and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read reads path (skipped when empty or missing), then .env, then applies
// environment overrides.
func Read(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from RECORDKIT_* and AWS_* variables.
func (c *Config) ApplyEnv() {
	c.Backend = getenv("RECORDKIT_BACKEND", c.Backend)
	c.PreparedStatements = getenvBool("RECORDKIT_PREPARED_STATEMENTS", c.PreparedStatements)
	c.SQLite.DSN = getenv("RECORDKIT_SQLITE_DSN", c.SQLite.DSN)

	c.AWS.Region = getenv("AWS_REGION", c.AWS.Region)
	c.AWS.AccessKey = getenv("AWS_ACCESS_KEY", c.AWS.AccessKey)
	c.AWS.SecretKey = getenv("AWS_SECRET_KEY", c.AWS.SecretKey)
	c.AWS.Table = getenv("AWS_DDB_TABLE", c.AWS.Table)
	c.AWS.Endpoint = getenv("AWS_DDB_ENDPOINT", c.AWS.Endpoint)
}

// Validate checks that the selected backend is known and has what it needs.
func (c Config) Validate() error {
	if c.Backend == "" {
		return errors.NewValidationError("backend", "must not be empty")
	}
	if !knownBackends[c.Backend] {
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.DSN == "" {
			return errors.NewValidationError("sqlite.dsn", "required for the sqlite backend")
		}
	case BackendDynamoDB:
		if c.AWS.Table == "" {
			return errors.NewValidationError("aws.table", "required for the dynamodb backend")
		}
		if c.AWS.Region == "" {
			return errors.NewValidationError("aws.region", "required for the dynamodb backend")
		}
		if (c.AWS.AccessKey == "") != (c.AWS.SecretKey == "") {
			return errors.NewValidationError("aws.secret_key", "access and secret keys must be set together")
		}
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		switch strings.TrimSpace(strings.ToLower(v)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return fallback
}
