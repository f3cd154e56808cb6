package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/dmitrijs2005/filevault/internal/timex"
)

// parseFlags overlays Config with -a, -t, -s and -o. Other arguments are
// filtered out first so -c/-config does not trip the flag set.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-s", "-o"})

	fs := flag.NewFlagSet("filevault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the filevault server")
	timeout := fs.String("t", cfg.RequestTimeout.String(), "request timeout")
	fs.StringVar(&cfg.SessionDB, "s", cfg.SessionDB, "local session database")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := timex.ParseDuration(*timeout)
	if err != nil {
		return err
	}
	cfg.RequestTimeout = d
	return nil
}
