package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/edushop/internal/cart"
	"github.com/jask/edushop/internal/catalog"
	"github.com/jask/edushop/internal/config"
	"github.com/jask/edushop/internal/database"
	"github.com/jask/edushop/internal/database/repository"
	"github.com/jask/edushop/internal/kvstore"
	"github.com/jask/edushop/internal/prefs"
	"github.com/jask/edushop/internal/secrets"
	"github.com/jask/edushop/internal/session"
	"github.com/jask/edushop/internal/tui"
)

func main() {
	exportPath := flag.String("export-catalog", "", "write the course catalog to a TOML file and exit")
	flag.Parse()

	ctx := context.Background()

	debug := os.Getenv("EDUSHOP_DEBUG") != ""
	if debug {
		f, err := tea.LogToFile("edushop.log", "edushop")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// import the seed file if configured, otherwise the built-in sample catalog
	if seed := seedFile(cfg); seed != "" {
		courses, err := prefs.LoadCourses(seed)
		if err != nil {
			log.Fatalf("catalog seed: %v", err)
		}
		if err := database.SeedCourses(ctx, db, courses); err != nil {
			log.Fatalf("catalog seed: %v", err)
		}
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	courseRepo := repository.NewCourseRepo(db)

	if *exportPath != "" {
		courses, err := courseRepo.List(ctx)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if err := prefs.SaveCourses(*exportPath, courses); err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("wrote %d courses to %s\n", len(courses), *exportPath)
		return
	}

	storage, closeStorage, err := openStorage(ctx, cfg, repository.NewKVRepo(db))
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStorage()

	// stores
	catalogStore := catalog.New(courseRepo, cfg.Catalog.LoadDelay)
	search := catalog.NewSearch(catalogStore, cfg.Search.Debounce)
	defer search.Close()
	cartStore := cart.New()
	sessionStore := session.NewStore(authenticator(cfg, repository.NewCredentialRepo(db)), storage)

	sessionStore.Subscribe(func(s session.Snapshot) {
		if s.Session != nil {
			log.Printf("session: %s (%s)", s.State, s.Session.Email)
			return
		}
		log.Printf("session: %s", s.State)
	})
	cartStore.Subscribe(func(s cart.Snapshot) {
		log.Printf("cart: %d item(s), total %d", s.Count, s.Total)
	})

	if err := sessionStore.Restore(ctx); err != nil {
		log.Printf("warn: starting signed out: %v", err)
	}

	if !debug {
		// the alt screen owns stderr from here on
		log.SetOutput(io.Discard)
	}
	p := tea.NewProgram(tui.New(ctx, cfg, tui.Stores{
		Catalog: catalogStore,
		Search:  search,
		Cart:    cartStore,
		Session: sessionStore,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func seedFile(cfg config.Config) string {
	if cfg.Catalog.SeedFile != "" {
		return cfg.Catalog.SeedFile
	}
	path, err := prefs.CatalogPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func authenticator(cfg config.Config, creds *repository.CredentialRepo) session.Authenticator {
	switch strings.ToLower(cfg.Auth.Mode) {
	case "local":
		return session.NewLocalAuthenticator(creds)
	default:
		return session.NewMockAuthenticator(cfg.Auth.Latency)
	}
}

// openStorage picks the durable area for the session and wraps it for token
// sealing when enabled.
func openStorage(ctx context.Context, cfg config.Config, kv *repository.KVRepo) (session.Storage, func(), error) {
	var (
		storage session.Storage = kv
		closeFn                 = func() {}
	)
	switch strings.ToLower(cfg.Storage.Driver) {
	case "redis":
		r, err := kvstore.DialRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		storage = r
		closeFn = func() { _ = r.Close() }
	case "memory":
		storage = kvstore.NewMemory()
	}
	if !cfg.Storage.SealToken {
		return storage, closeFn, nil
	}
	sealed, err := secrets.NewSealedStorage(storage, secrets.MasterKey(), session.TokenKey)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return sealed, closeFn, nil
}
