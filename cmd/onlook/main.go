package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.sr.ht/~jakintosh/onlook/internal/allowlist"
	"git.sr.ht/~jakintosh/onlook/internal/api"
	"git.sr.ht/~jakintosh/onlook/internal/config"
	"git.sr.ht/~jakintosh/onlook/pkg/access"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
	"git.sr.ht/~jakintosh/onlook/pkg/onlooker"
	"git.sr.ht/~jakintosh/onlook/pkg/store"
	"git.sr.ht/~jakintosh/onlook/pkg/store/bolt"
	"git.sr.ht/~jakintosh/onlook/pkg/store/leveldb"
	"git.sr.ht/~jakintosh/onlook/pkg/store/sqlite"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to load configuration: %v\n", err)
	}

	s, err := openStore(cfg.Backend, cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open store: %v\n", err)
	}

	policy, err := buildPolicy(cfg.AllowlistPath)
	if err != nil {
		log.Fatalf("failed to load allowlist: %v\n", err)
	}

	d := directory.New(s)
	x := onlooker.New(s)
	a := api.New(d, x, access.New(d, x), policy, cfg.FederatedKey)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: a.Router(),
	}

	go func() {
		log.Printf("onlook listening on %s (%s store at %s)\n",
			cfg.ListenAddr, cfg.Backend, cfg.StorePath)
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v\n", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("shutting down\n")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v\n", err)
	}
	if err := s.Close(); err != nil {
		log.Printf("store close error: %v\n", err)
	}
}

func openStore(
	backend string,
	path string,
) (
	store.Store,
	error,
) {
	switch backend {
	case "leveldb":
		return leveldb.Open(path)
	case "bolt":
		return bolt.Open(path)
	case "sqlite":
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown backend '%s' (want leveldb, bolt, or sqlite)", backend)
	}
}

func buildPolicy(
	allowlistPath string,
) (
	api.PolicyProvider,
	error,
) {
	if allowlistPath == "" {
		log.Printf("no allowlist configured; allowing all federated identities\n")
		return allowlist.Static(directory.Allowlist{All: true}), nil
	}
	return allowlist.NewProvider(allowlistPath)
}
