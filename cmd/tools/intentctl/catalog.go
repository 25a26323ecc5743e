// cmd/tools/intentctl/catalog.go
package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/database"
)

func newCatalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and publish catalog snapshots",
	}
	cmd.AddCommand(newCatalogValidateCmd(), newCatalogSyncCmd(opts))
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a snapshot document against the schema and build it",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.NewFileSource(file).Load(contextOrBackground(cmd))
			if err != nil {
				return err
			}
			snap, err := catalog.NewSnapshot(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog %s is valid (version %s)\n", file, snap.Version())
			printStats(cmd, snap.Stats())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", defaultCatalogFile, "Snapshot file (.json or .yaml)")
	return cmd
}

func newCatalogSyncCmd(opts *options) *cobra.Command {
	var (
		from []string
		file string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Load a snapshot from postgres, elasticsearch or a file and publish it to redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd)
			log := opts.logger()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Redis.Address == "" {
				return fmt.Errorf("database.redis.address is required to publish a snapshot")
			}
			if file != "" {
				cfg.Catalog.FilePath = file
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = config.GetDuration(cfg.Catalog.RedisTTL)
			}

			deps := catalog.SourceDeps{
				Config:       cfg.Catalog,
				ProductIndex: cfg.Database.Elasticsearch.ProductIndex,
			}
			if deps.Redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			defer deps.Redis.Close()

			if contains(from, "postgres") {
				if deps.Postgres, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
					return err
				}
				defer deps.Postgres.Close()
			}
			if contains(from, "elasticsearch") {
				if deps.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
					return err
				}
			}

			source, err := catalog.NewSourceChain(from, deps)
			if err != nil {
				return err
			}
			data, err := source.Load(ctx)
			if err != nil {
				return err
			}
			snap, err := catalog.NewSnapshot(data)
			if err != nil {
				return err
			}

			if err := catalog.NewRedisSource(deps.Redis, cfg.Catalog.RedisKey).Publish(ctx, data, ttl); err != nil {
				return fmt.Errorf("publish snapshot: %w", err)
			}
			log.Info("catalog snapshot published", map[string]interface{}{
				"source":  source.Name(),
				"key":     cfg.Catalog.RedisKey,
				"version": snap.Version(),
				"ttl":     ttl.String(),
			})

			fmt.Fprintf(cmd.OutOrStdout(), "published %s from %s to %s\n", snap.Version(), source.Name(), cfg.Catalog.RedisKey)
			printStats(cmd, snap.Stats())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&from, "from", []string{"postgres"}, "Sources to load from, in order (file, postgres, elasticsearch)")
	cmd.Flags().StringVar(&file, "file", "", "Snapshot file for the file source (default: catalog.file_path)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Redis key TTL, 0 keeps forever (default: catalog.redis_ttl)")
	return cmd
}

func printStats(cmd *cobra.Command, stats map[string]int) {
	kinds := make([]string, 0, len(stats))
	for k := range stats {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %d\n", k, stats[k])
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
