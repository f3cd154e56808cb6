package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/timex"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from environment variables. Unset variables leave
// the current value untouched; set-but-empty ones clear string fields.
//
//	PORT                  HTTP port (":PORT"); HTTP_ADDR wins when both are set
//	HTTP_ADDR             full HTTP bind address
//	GRPC_HEALTH_ADDR      gRPC health bind address
//	DATABASE_URL          PostgreSQL DSN
//	JWT_SECRET            HMAC secret
//	JWT_EXPIRES_IN        token lifetime ("7d", "12h")
//	S3_ENDPOINT           S3 base endpoint
//	S3_REGION             S3 region
//	S3_ACCESS_KEY_ID      S3 access key
//	S3_SECRET_ACCESS_KEY  S3 secret key
//	S3_BUCKET_NAME        S3 bucket
//	REDIS_ADDR            redis address
//	REDIS_PASSWORD        redis password
//	REDIS_DB              redis database number
//	CORS_ORIGINS          comma separated origins
//	LOG_LEVEL             log level
func parseEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = ":" + strings.TrimSpace(v)
	}
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &cfg.GRPCHealthAddr)
	str("DATABASE_URL", &cfg.DatabaseDSN)
	str("JWT_SECRET", &cfg.SecretKey)
	str("S3_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ACCESS_KEY_ID", &cfg.S3AccessKey)
	str("S3_SECRET_ACCESS_KEY", &cfg.S3SecretKey)
	str("S3_BUCKET_NAME", &cfg.S3Bucket)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("JWT_EXPIRES_IN"); ok {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
		}
		cfg.AccessTokenValidityDuration = d
	}

	if v, ok := lookup("REDIS_DB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	if v, ok := lookup("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
