package config

import (
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/dmitrijs2005/filevault/internal/timex"
)

var serverFlags = []string{
	"-a", "-health", "-d", "-s", "-t", "-u", "-p", "-b", "-r", "-e",
	"-redis", "-redis-password", "-redis-db", "-cors", "-l",
}

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags:
//
//	-a string               HTTP bind address (e.g. ":3000")
//	-health string          gRPC health bind address
//	-d string               PostgreSQL DSN
//	-s string               JWT HMAC secret key
//	-t duration             token validity ("7d", "12h")
//	-u string               S3 access key
//	-p string               S3 secret key
//	-b string               S3 bucket name
//	-r string               S3 region
//	-e string               S3 base endpoint (e.g. "http://127.0.0.1:9000")
//	-redis string           redis address
//	-redis-password string  redis password
//	-redis-db int           redis database number
//	-cors string            comma separated CORS origins
//	-l string               log level
//
// args is filtered with flagx.FilterArgs first so -c/-config and unknown
// flags never reach the flag set.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("filevault-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "health", config.GRPCHealthAddr, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Func("t", "token validity (e.g. 7d, 12h)", func(v string) error {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return err
		}
		config.AccessTokenValidityDuration = d
		return nil
	})
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database")
	fs.Func("cors", "comma separated CORS origins", func(v string) error {
		config.CORSOrigins = splitList(v)
		return nil
	})
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	return nil
}
