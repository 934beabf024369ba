package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/taskdeck/taskdeck/internal/bus"
	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/db"
	"github.com/taskdeck/taskdeck/internal/state"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/tui"
	"github.com/taskdeck/taskdeck/internal/web"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	portFlag := flag.Int("port", 0, "api server port")
	serveFlag := flag.Bool("serve", false, "run the api server without the ui")
	apiFlag := flag.String("api", "", "base url of a remote api, skips the embedded server")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "taskdeck.db")
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if *apiFlag != "" {
		cfg.APIBaseURL = *apiFlag
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	if *serveFlag {
		runServer(cfg)
		return
	}

	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		store, err := openStore(cfg.DBPath)
		if err != nil {
			log.Fatal(err)
		}
		defer store.DB.Close()

		e := web.NewServer(task.NewService(store), cfg.Debug).Echo()
		e.Logger.SetOutput(os.Stderr)
		go func() {
			if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
				log.Printf("api server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = e.Shutdown(ctx)
		}()

		baseURL = fmt.Sprintf("http://localhost:%d/api", cfg.Port)
	}

	events := bus.New()
	store := state.New(client.New(baseURL), events)

	if err := tui.Run(store, events); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cfg config.Config) {
	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}

	e := web.NewServer(task.NewService(store), cfg.Debug).Echo()
	addr := fmt.Sprintf(":%d", cfg.Port)

	go func() {
		log.Printf("api server running at http://localhost%s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"api-server": func(ctx context.Context) error {
				return e.Shutdown(ctx)
			},
			"database": func(ctx context.Context) error {
				return store.DB.Close()
			},
		},
	)

	os.Exit(<-wait)
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(dbPath string) (*db.Store, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}
