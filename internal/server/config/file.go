package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/dmitrijs2005/filevault/internal/timex"
)

// FileConfig mirrors Config for JSON and YAML decoding. It uses
// timex.Duration for interval fields, which accepts "7d", "1h30m" or integer
// nanoseconds. Zero values mean "not set" and are not copied.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	GRPCHealthAddr              string         `json:"grpc_health_addr" yaml:"grpc_health_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3AccessKey                 string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	RedisAddr                   string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword               string         `json:"redis_password" yaml:"redis_password"`
	RedisDB                     int            `json:"redis_db" yaml:"redis_db"`
	CORSOrigins                 []string       `json:"cors_origins" yaml:"cors_origins"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&cfg.HTTPAddr, fc.HTTPAddr)
	set(&cfg.GRPCHealthAddr, fc.GRPCHealthAddr)
	set(&cfg.DatabaseDSN, fc.DatabaseDSN)
	set(&cfg.SecretKey, fc.SecretKey)
	set(&cfg.S3AccessKey, fc.S3AccessKey)
	set(&cfg.S3SecretKey, fc.S3SecretKey)
	set(&cfg.S3Bucket, fc.S3Bucket)
	set(&cfg.S3Region, fc.S3Region)
	set(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	set(&cfg.RedisAddr, fc.RedisAddr)
	set(&cfg.RedisPassword, fc.RedisPassword)
	set(&cfg.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RedisDB > 0 {
		cfg.RedisDB = fc.RedisDB
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
}
