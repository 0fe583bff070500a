package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leonardcser/storefront-mcp/internal/cache"
	"github.com/leonardcser/storefront-mcp/internal/config"
	"github.com/leonardcser/storefront-mcp/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		panic(err)
	}
	sock := cfg.CacheSocket

	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(sock), 0o755)
	_ = os.Remove(sock)

	l, err := net.Listen("unix", sock)
	if err != nil {
		logger.Errorf("listen on %s: %v", sock, err)
		panic(err)
	}
	_ = os.Chmod(sock, 0o600)

	store, err := cache.OpenBolt(cfg.CacheDB, cache.Options{})
	if err != nil {
		_ = l.Close()
		logger.Errorf("open %s: %v", cfg.CacheDB, err)
		panic(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	logger.Infof("Cache daemon serving %s on %s", cfg.CacheDB, sock)
	if err := cache.Serve(l, store); err != nil {
		logger.Errorf("cache daemon: %v", err)
	}
	_ = os.Remove(sock)
	logger.Infof("Cache daemon stopped")
}
