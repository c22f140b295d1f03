// Command server runs the leu web services: Romanian numerals, BNR currency
// conversion and upload inspection, plus /metrics and /health.
//
//	server -config ./config.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/remiges-tech/logharbour/logharbour"

	"github.com/remiges-tech/leu/config"
	"github.com/remiges-tech/leu/internal/webservices/currencysvc"
	"github.com/remiges-tech/leu/internal/webservices/numeralsvc"
	"github.com/remiges-tech/leu/internal/webservices/uploadsvc"
	"github.com/remiges-tech/leu/metrics"
	"github.com/remiges-tech/leu/objstore"
	"github.com/remiges-tech/leu/ratefetch"
	"github.com/remiges-tech/leu/router"
	"github.com/remiges-tech/leu/service"
)

const defaultRatesURL = "https://www.bnr.ro/nbrfxrates.xml"

// AppConfig is read from the -config file, JSON or YAML.
type AppConfig struct {
	Port        int    `json:"port" yaml:"port"`
	LogPriority string `json:"log_priority" yaml:"log_priority"`

	RatesURL    string `json:"rates_url" yaml:"rates_url"`
	TimeZone    string `json:"time_zone" yaml:"time_zone"`
	PublishHour int    `json:"publish_hour" yaml:"publish_hour"`

	// Cache is one of memory, redis or minio.
	Cache          string `json:"cache" yaml:"cache"`
	RedisAddr      string `json:"redis_addr" yaml:"redis_addr"`
	MinioEndpoint  string `json:"minio_endpoint" yaml:"minio_endpoint"`
	MinioAccessKey string `json:"minio_access_key" yaml:"minio_access_key"`
	MinioSecretKey string `json:"minio_secret_key" yaml:"minio_secret_key"`
	MinioBucket    string `json:"minio_bucket" yaml:"minio_bucket"`
	MinioSecure    bool   `json:"minio_secure" yaml:"minio_secure"`

	UploadMaxMemory int64 `json:"upload_max_memory" yaml:"upload_max_memory"`
}

func (c *AppConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogPriority == "" {
		c.LogPriority = "info"
	}
	if c.RatesURL == "" {
		c.RatesURL = defaultRatesURL
	}
	if c.TimeZone == "" {
		c.TimeZone = "Europe/Bucharest"
	}
	if c.PublishHour == 0 {
		c.PublishHour = ratefetch.DefaultPublishHour
	}
	if c.Cache == "" {
		c.Cache = "memory"
	}
	if c.MinioBucket == "" {
		c.MinioBucket = "leu-rates"
	}
	if c.UploadMaxMemory == 0 {
		c.UploadMaxMemory = uploadsvc.DefaultMaxMemory
	}
}

func main() {
	configFile := flag.String("config", "./config.json", "Path to the JSON or YAML configuration file")
	flag.Parse()

	var appConfig AppConfig
	cfg, err := config.LoadConfigFromFile(*configFile, &appConfig)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	appConfig.setDefaults()

	lctx, err := loggerContext(appConfig.LogPriority)
	if err != nil {
		log.Fatalf("Error in config: %v", err)
	}
	fallbackWriter := logharbour.NewFallbackWriter(os.Stdout, os.Stderr)
	lh := logharbour.NewLogger(lctx, "leu", fallbackWriter)

	ctx := context.Background()

	cache, closeCache, err := newCache(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to set up rate cache: %v", err)
	}
	defer closeCache()

	loc, err := time.LoadLocation(appConfig.TimeZone)
	if err != nil {
		log.Fatalf("Invalid time zone %q: %v", appConfig.TimeZone, err)
	}
	fetcher, err := ratefetch.New(appConfig.RatesURL, cache,
		ratefetch.WithLocation(loc),
		ratefetch.WithPublishHour(appConfig.PublishHour),
		ratefetch.WithLogger(lh),
	)
	if err != nil {
		log.Fatalf("Failed to create rate fetcher: %v", err)
	}

	m := metrics.NewPrometheusMetrics()
	if err := metrics.RegisterConversionMetrics(m); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	r, err := router.SetupRouter(lh, m)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	s := service.NewService(r).
		WithConfig(cfg).
		WithLogger(lh).
		WithDependency(service.DepMetrics, metrics.Metrics(m)).
		WithDependency(service.DepRateFetcher, fetcher).
		WithDependency(service.DepUploadLimit, appConfig.UploadMaxMemory)

	numeralsvc.RegisterRoutes(s)
	currencysvc.RegisterRoutes(s)
	uploadsvc.RegisterRoutes(s)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", appConfig.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lh.Info().LogActivity("Starting server", map[string]any{
			"port":  appConfig.Port,
			"cache": appConfig.Cache,
			"rates": appConfig.RatesURL,
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	lh.Info().LogActivity("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lh.Error(err).LogActivity("Server shutdown error", nil)
	}
}

// loggerContext maps a priority name from the config file to a logger
// context with that minimum priority.
func loggerContext(priority string) (*logharbour.LoggerContext, error) {
	switch priority {
	case "debug2":
		return logharbour.NewLoggerContext(logharbour.Debug2), nil
	case "debug1":
		return logharbour.NewLoggerContext(logharbour.Debug1), nil
	case "debug0":
		return logharbour.NewLoggerContext(logharbour.Debug0), nil
	case "info":
		return logharbour.NewLoggerContext(logharbour.Info), nil
	case "warn":
		return logharbour.NewLoggerContext(logharbour.Warn), nil
	case "err":
		return logharbour.NewLoggerContext(logharbour.Err), nil
	default:
		return nil, fmt.Errorf("unknown log priority %q", priority)
	}
}

// newCache builds the rate cache named by cfg.Cache. The returned func
// releases its connections.
func newCache(ctx context.Context, cfg AppConfig) (ratefetch.CacheStore, func(), error) {
	noop := func() {}

	switch cfg.Cache {
	case "memory":
		return ratefetch.NewInMemoryCache(), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		// entries outlive a publication window only to cover weekends
		cache := ratefetch.NewRedisCache(client, ratefetch.DefaultKeyPrefix, 72*time.Hour)
		return cache, func() { client.Close() }, nil

	case "minio":
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioSecure,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("creating minio client: %w", err)
		}
		store := objstore.NewMinioObjectStore(client)
		if err := store.EnsureBucket(ctx, cfg.MinioBucket); err != nil {
			return nil, noop, err
		}
		return ratefetch.NewObjectCache(store, cfg.MinioBucket, "rates/"), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown cache %q, want memory, redis or minio", cfg.Cache)
	}
}
