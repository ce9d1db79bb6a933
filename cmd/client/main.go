package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/worldclock/internal/client/cli"
	"github.com/dmitrijs2005/worldclock/internal/client/client"
	"github.com/dmitrijs2005/worldclock/internal/client/config"
	"github.com/dmitrijs2005/worldclock/internal/client/services"
	"github.com/dmitrijs2005/worldclock/internal/flagx"
	"github.com/dmitrijs2005/worldclock/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	repos, err := client.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Printf("db init error: %v", err)
		os.Exit(1)
	}
	defer repos.DB.Close()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	httpClient := client.NewHTTPClient(cfg.ServerEndpointAddr, cfg.AccessToken)
	defer httpClient.Close()

	clockService := services.NewClockService(repos.Clocks, logger)
	syncService := services.NewSyncService(httpClient, repos.Clocks, repos.Metadata, logger)

	app := cli.NewApp(clockService, syncService, os.Stdout)
	root := app.RootCmd()

	// The config flags were already consumed; keep them away from cobra.
	root.SetArgs(flagx.ExcludeArgs(os.Args[1:], []string{"-a", "-f", "-t", "-c", "-config"}))

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
