package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/internal/server"
	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// redisURLEnv names the environment variable read when --redis-url is unset.
const redisURLEnv = "FLOWLAYOUT_REDIS_URL"

// serveCommand creates the serve command, which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		redisURL    string
		redisPrefix string
		namespace   string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render API over HTTP",
		Long: `Serve the layout and render API over HTTP.

Results are cached in Redis when --redis-url (or $` + redisURLEnv + `) is
set, and in the local cache directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL == "" {
				redisURL = os.Getenv(redisURLEnv)
			}
			return c.runServe(cmd.Context(), addr, redisURL, redisPrefix, namespace, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for the shared cache")
	cmd.Flags().StringVar(&redisPrefix, "redis-prefix", appName+":", "key prefix in Redis")
	cmd.Flags().StringVar(&namespace, "namespace", "", "cache key namespace, for servers sharing one Redis")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisURL, redisPrefix, namespace string, noCache bool) error {
	var (
		store cache.Cache
		err   error
	)
	switch {
	case noCache:
		store = cache.NewNullCache()
	case redisURL != "":
		store, err = cache.NewRedisCache(ctx, cache.RedisConfig{URL: redisURL, Prefix: redisPrefix})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "prefix", redisPrefix)
	default:
		store, err = newCache(false)
		if err != nil {
			return fmt.Errorf("initialize cache: %w", err)
		}
	}

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	var keyer cache.Keyer
	if namespace != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), namespace+":")
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	return server.New(runner, c.Logger).ListenAndServe(ctx, addr)
}
