// Command mvnwatch watches Maven repositories for new artifact
// versions.
//
// Continuous watch over a configured list of coordinates:
//
//	mvnwatch -config mvnwatch.yaml
//	mvnwatch com.google.guava:guava org.slf4j:slf4j-api
//
// One-shot wait for a specific version to appear:
//
//	mvnwatch com.google.guava:guava:33.0.0-jre
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/git-pkgs/mvnwatch/client"
	"github.com/git-pkgs/mvnwatch/internal/config"
	"github.com/git-pkgs/mvnwatch/internal/core"
	"github.com/git-pkgs/mvnwatch/internal/maven"
	"github.com/git-pkgs/mvnwatch/internal/metrics"
	"github.com/git-pkgs/mvnwatch/internal/notify"
	"github.com/git-pkgs/mvnwatch/internal/watch"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to the watch configuration file (watch targets come from the file; do not also pass coordinates)")
		repoURL     = flag.String("repo", maven.DefaultURL, "repository base URL")
		interval    = flag.Duration("interval", watch.DefaultInterval, "pause between poll cycles")
		webhookURL  = flag.String("webhook", "", "webhook destination URL for notifications")
		metricsAddr = flag.String("metrics", "", "listen address for the /metrics endpoint")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "mvnwatch: ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, logger, *configPath, *repoURL, *interval, *webhookURL, *metricsAddr, flag.Args())
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, logger *log.Logger, configPath, repoURL string, interval time.Duration, webhookURL, metricsAddr string, args []string) error {
	var (
		targets []watch.Target
		source  watch.TargetSource
	)

	// A config file overrides flag defaults for the fields it sets.
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if _, err := cfg.WatchTargets(); err != nil {
			return err
		}
		if cfg.Repository != "" {
			repoURL = cfg.Repository
		}
		if cfg.Interval != 0 {
			interval = time.Duration(cfg.Interval)
		}
		if cfg.WebhookURL != "" {
			webhookURL = cfg.WebhookURL
		}
		if cfg.MetricsAddr != "" {
			metricsAddr = cfg.MetricsAddr
		}
		source = config.NewFile(configPath)
	}

	// A single argument with an explicit version is a one-shot await.
	if len(args) == 1 {
		coord, version, repoOverride, err := core.ParseTarget(args[0])
		if err != nil {
			return err
		}
		if version != "" {
			if repoOverride != "" {
				repoURL = repoOverride
			}
			return await(ctx, logger, repoURL, interval, webhookURL, coord, version)
		}
	}

	if len(args) > 0 {
		if source != nil {
			return errors.New("watch targets come from -config or from arguments, not both")
		}
		for _, arg := range args {
			coord, err := core.ParseWatchTarget(arg)
			if err != nil {
				return err
			}
			targets = append(targets, watch.Target{Coordinate: coord})
		}
		source = watch.StaticTargets(targets...)
	}

	if source == nil {
		return errors.New("nothing to watch: pass coordinates or -config")
	}

	if metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(metricsAddr, metrics.Handler()); err != nil {
				logger.Printf("metrics listener: %v", err)
			}
		}()
	}

	repo := maven.New(repoURL, client.NewClient())
	w := watch.New(
		watch.NewBreakerSource(repo, hostOf(repoURL)),
		buildHub(webhookURL),
		core.NewSeenStore(),
		watch.WithInterval(interval),
		watch.WithTargetSource(source),
		watch.WithLogger(logger),
		watch.WithURLs(repo.URLs()),
	)

	logger.Printf("watching (repository %s, interval %s)", repoURL, interval)
	return w.Run(ctx)
}

func await(ctx context.Context, logger *log.Logger, repoURL string, interval time.Duration, webhookURL string, coord core.Coordinate, version string) error {
	repo := maven.New(repoURL, client.NewClient())
	w := watch.New(
		repo,
		buildHub(webhookURL),
		core.NewSeenStore(),
		watch.WithInterval(interval),
		watch.WithLogger(logger),
		watch.WithURLs(repo.URLs()),
	)

	logger.Printf("awaiting %s %s (repository %s)", coord, version, repoURL)
	return w.Await(ctx, coord, version)
}

func buildHub(webhookURL string) *notify.Hub {
	sinks := []notify.Notifier{notify.NewConsole(os.Stdout)}
	if webhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(webhookURL))
	}
	return notify.NewHub(sinks...)
}

// hostOf extracts the host for circuit breaker labeling, falling back
// to the raw URL.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
