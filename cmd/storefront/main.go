package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/leonardcser/storefront-mcp/internal/cache"
	"github.com/leonardcser/storefront-mcp/internal/cart"
	"github.com/leonardcser/storefront-mcp/internal/cms"
	"github.com/leonardcser/storefront-mcp/internal/commerce"
	"github.com/leonardcser/storefront-mcp/internal/config"
	"github.com/leonardcser/storefront-mcp/internal/gateway"
	"github.com/leonardcser/storefront-mcp/internal/logger"
	"github.com/leonardcser/storefront-mcp/internal/prefs"
	"github.com/leonardcser/storefront-mcp/internal/supabase"
	"github.com/leonardcser/storefront-mcp/internal/tools"
)

const daemonBinary = "storefront-cache"

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting storefront MCP server")

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		panic(err)
	}

	kv, closeKV, err := openKV(cfg)
	if err != nil {
		logger.Errorf("Failed to open %s cache: %v", cfg.CacheBackend, err)
		panic(err)
	}
	defer closeKV()
	logger.Infof("Using %s cache backend", cfg.CacheBackend)

	client := commerce.New(cfg.CommerceURL, cfg.PublishableKey, cfg.CommerceTimeout)
	src := gateway.Sources{Commerce: client}
	if cfg.CMSToken != "" {
		src.Content = cms.New(cfg.CMSURL, cfg.CMSToken, cfg.ContentTimeout)
	} else {
		logger.Warnf("STOREFRONT_CMS_TOKEN not set, CMS content disabled")
	}
	if cfg.SupabaseURL != "" {
		src.RPC = supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ContentTimeout)
	} else {
		logger.Warnf("STOREFRONT_SUPABASE_URL not set, sections disabled")
	}
	gw := gateway.New(cache.New(kv), src, cfg.CacheExpiry)

	store, err := newPrefs(kv, cfg)
	if err != nil {
		logger.Errorf("Invalid preference defaults: %v", err)
		panic(err)
	}
	store.OnChange(func(p prefs.Prefs) {
		logger.Infof("Preferences changed: currency=%s language=%s", p.Currency, p.Language)
	})

	hub := cart.NewHub()
	svc := cart.NewService(gw.Cache(), client, gw, hub)
	view := cart.NewView(gw)
	stop := view.Attach(context.Background(), hub)
	defer stop()

	s := server.NewMCPServer(
		"Storefront MCP",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)
	tools.Register(s, tools.Deps{Gateway: gw, Cart: svc, View: view, Prefs: store})

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

func newPrefs(kv prefs.KV, cfg config.Config) (*prefs.Store, error) {
	cur, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("STOREFRONT_CURRENCY: %w", err)
	}
	lang, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("STOREFRONT_LOCALE: %w", err)
	}
	return prefs.New(kv).WithDefaults(prefs.Prefs{Currency: cur, Language: lang}), nil
}

// openKV opens the configured cache backend. The returned func releases it.
func openKV(cfg config.Config) (cache.KV, func(), error) {
	switch cfg.CacheBackend {
	case config.BackendBolt:
		store, err := cache.OpenBolt(cfg.CacheDB, cache.Options{})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return cache.NewRedisStore(rdb, "storefront"), func() { _ = rdb.Close() }, nil
	default:
		kv, err := connectDaemon(cfg.CacheSocket)
		return kv, func() {}, err
	}
}

// connectDaemon connects to the cache daemon, starting it if needed.
func connectDaemon(sock string) (cache.KV, error) {
	logger.Infof("Attempting to connect to cache daemon at %s", sock)
	client, err := connectCache(sock)
	if err == nil {
		return client, nil
	}
	logger.Warnf("Failed to connect to cache daemon: %v, attempting to start daemon", err)
	if startErr := startCacheDaemon(); startErr != nil {
		logger.Errorf("Failed to start cache daemon: %v", startErr)
	} else {
		logger.Infof("Cache daemon started")
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if client, err = connectCache(sock); err == nil {
			return client, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("cache daemon at %s: %w", sock, err)
}

func connectCache(sock string) (cache.KV, error) {
	client := cache.NewClient(sock)
	if err := client.Ping(); err != nil {
		return nil, err
	}
	return client, nil
}

func startCacheDaemon() error {
	// Next to this executable, then PATH, then the working directory.
	candidates := []string{}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), daemonBinary))
	}
	if path, err := exec.LookPath(daemonBinary); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "./"+daemonBinary)

	for _, bin := range candidates {
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin)
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}
