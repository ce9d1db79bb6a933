package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/worldclock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the sync server
//	-f string   path of the local database file
//	-t string   access token
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the sync server")
	fs.StringVar(&cfg.DatabaseDSN, "f", cfg.DatabaseDSN, "path of the local database file")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
