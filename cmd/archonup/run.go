package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/archonup/archonup/internal/buildcache"
	"github.com/archonup/archonup/internal/config"
	"github.com/archonup/archonup/internal/update"
	"github.com/archonup/archonup/pkg/archon"
)

var runCmd = &cobra.Command{
	Use:   "run <selection.json>",
	Short: "Fetch builds for a selection and update the SavedVariables file",
	Long: `Fetch builds for a selection and update the SavedVariables file.

Examples:
  archonup run selection.json
  archonup run --no-cache selection.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-cache", false, "Skip the build-code cache")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	sel, err := config.LoadSelection(args[0])
	if err != nil {
		return err
	}

	clientOpts := []archon.Option{
		archon.WithLogger(log),
		archon.WithHTTPClient(&http.Client{Timeout: cfg.Fetch.Timeout.Duration}),
		archon.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Fetch.RequestsPerSecond), cfg.Fetch.Burst)),
	}
	if cfg.Fetch.BaseURL != "" {
		clientOpts = append(clientOpts, archon.WithBaseURL(cfg.Fetch.BaseURL))
	}
	if cfg.Fetch.UserAgent != "" {
		clientOpts = append(clientOpts, archon.WithUserAgent(cfg.Fetch.UserAgent))
	}
	client := archon.New(clientOpts...)

	opts := []update.Option{
		update.WithConcurrency(cfg.Fetch.Concurrency),
		update.WithLogger(log),
	}
	if cfg.Cache.Enabled && !noCache {
		cache, err := buildcache.Open(cfg.Cache.Path, cfg.Cache.TTL.Duration)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, update.WithCache(cache))
	}

	report, err := update.New(client, opts...).Run(cmd.Context(), sel)
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())
	return nil
}
