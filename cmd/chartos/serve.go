package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/DGEXSolutions/chartos/httpapi"
	"github.com/DGEXSolutions/chartos/internal/procs"
	"github.com/DGEXSolutions/chartos/internal/settings"
	"github.com/DGEXSolutions/chartos/migrate"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/tilecache"
	"github.com/DGEXSolutions/chartos/writepath"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the chartos HTTP server",
	RunE:  runServe,
}

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "address to listen on")
}

// runServe is the Go analog of chartos/make_app.py's make_app: read
// settings, parse the layer config, start the Postgres/Redis pools, run
// the Migrator, then build the router and serve.
func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfgSettings, err := settings.Load()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	configData, err := os.ReadFile(cfgSettings.ConfigPath)
	if err != nil {
		return fmt.Errorf("serve: reading %s: %w", cfgSettings.ConfigPath, err)
	}
	cfg, err := schema.ParseYAML(configData)
	if err != nil {
		return fmt.Errorf("serve: parsing layer config: %w", err)
	}

	pgPool := procs.NewPostgresPool(cfgSettings.PsqlConnString())
	if err := pgPool.Start(ctx); err != nil {
		return fmt.Errorf("serve: starting postgres pool: %w", err)
	}
	defer pgPool.Stop(ctx)

	redisPool := procs.NewRedisPool(cfgSettings.RedisURL)
	if err := redisPool.Start(ctx); err != nil {
		return fmt.Errorf("serve: starting redis pool: %w", err)
	}
	defer redisPool.Stop(ctx)

	migrator := migrate.New(pgPool.Exec)
	if err := migrator.Run(ctx, cfg); err != nil {
		return fmt.Errorf("serve: running migrations: %w", err)
	}

	cache := tilecache.New(redisPool.Client())
	wp := writepath.New(pgPool.Pool(), cache, cfgSettings.MaxZoom)

	srv := &httpapi.Server{
		Config:    cfg,
		DB:        pgPool.Pool(),
		Redis:     redisPool.Client(),
		Cache:     cache,
		WritePath: wp,
		RootURL:   cfgSettings.RootURL,
		MaxZoom:   cfgSettings.MaxZoom,
		Log:       log,
	}

	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.WithField("addr", listenAddr).Info("chartos listening")
	return httpServer.ListenAndServe()
}
