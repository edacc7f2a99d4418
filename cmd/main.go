package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/andesco/wikiproxy/handlers"
	"github.com/andesco/wikiproxy/pkg/config"
	"github.com/andesco/wikiproxy/pkg/logging"
	"github.com/andesco/wikiproxy/pkg/wikiproxy"
)

func main() {
	parser := argparse.NewParser("wikiproxy", "Serve region-subdomain wikis under a single proxy domain")

	configPath := parser.String("c", "config", &argparse.Options{
		Required: false,
		Default:  os.Getenv("CONFIG"),
		Help:     "Path to a YAML configuration file",
	})
	port := parser.String("p", "port", &argparse.Options{
		Required: false,
		Help:     "Port the webserver will listen on",
	})
	domain := parser.String("d", "domain", &argparse.Options{
		Required: false,
		Help:     "Proxy domain that replaces .org, e.g. example.com",
	})
	rewriteInPage := parser.Flag("r", "rewrite-in-page", &argparse.Options{
		Required: false,
		Help:     "Rewrite absolute links to project hosts inside HTML pages",
	})
	metricsAddr := parser.String("m", "metrics-addr", &argparse.Options{
		Required: false,
		Help:     "Listen address for Prometheus metrics, e.g. :9090",
	})
	prefork := parser.Flag("P", "prefork", &argparse.Options{
		Required: false,
		Help:     "This will spawn multiple processes listening",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration load failed: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *domain != "" {
		cfg.Domain = *domain
	}
	if *rewriteInPage {
		cfg.RewriteInPageURL = true
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if _, ok := os.LookupEnv("LOG_PRETTY"); !ok && !cfg.Log.Pretty {
		cfg.Log.Pretty = logging.IsTerminal()
	}
	logger := logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	proxy := wikiproxy.New(cfg,
		wikiproxy.WithLogger(logger),
		wikiproxy.WithMetrics(wikiproxy.NewMetrics(reg)),
	)

	app := fiber.New(fiber.Config{
		Prefork:               *prefork,
		GETOnly:               false,
		ReadBufferSize:        4096 * 4,
		DisableStartupMessage: true,
	})
	app.Use(handlers.ProxySite(proxy, logger))

	if cfg.MetricsAddr != "" && !fiber.IsChild() {
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("domain", cfg.Domain).
		Bool("rewrite_in_page_url", cfg.RewriteInPageURL).
		Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
