package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/audit"
	"shivaccounts.org/internal/config"
	"shivaccounts.org/internal/httpapi"
	"shivaccounts.org/internal/obs"
	"shivaccounts.org/internal/revocation"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Account store: PostgreSQL when a DSN is configured, in-memory with an
	// optional bootstrap admin otherwise.
	var (
		accounts account.Store
		probe    httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		pg, err := account.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open account store: %v", err)
		}
		defer pg.Close()
		accounts = pg
		probe = httpapi.ReadyProbe{DB: pg.DB()}
	} else {
		mem := account.NewMemoryStore()
		if err := bootstrapAdmin(mem); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		accounts = mem
	}

	registry := revocation.NewMemory(revocation.DefaultCeiling)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go revocation.RunSweeper(ctx, registry, revocation.DefaultSweepInterval, func(cleared int) {
		obs.ObserveRevocationSweep()
		obs.SetRevocationSize(registry.Len())
		_ = audit.LogEvent(context.Background(), "revocation.sweep", map[string]any{
			"cleared": cleared,
		})
	})

	api := httpapi.New(cfg, accounts, registry, probe, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting shivaccounts-api %s on %s (%s mode)", version, srv.Addr, cfg.Mode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("Stopped")
}

// bootstrapAdmin seeds the in-memory store with an admin account when the
// bootstrap variables are set, so a fresh development instance is usable.
func bootstrapAdmin(store *account.MemoryStore) error {
	email := os.Getenv("SHIV_ADMIN_EMAIL")
	password := os.Getenv("SHIV_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	hash, err := account.HashPassword(password)
	if err != nil {
		return err
	}
	return store.Put(&account.Account{
		ID:           "admin",
		Email:        email,
		Name:         "Bootstrap Admin",
		Role:         account.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}
