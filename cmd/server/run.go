package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tabletop-map/server/config"
	"tabletop-map/server/handlers"
	"tabletop-map/server/models"
	"tabletop-map/server/persistence"
	"tabletop-map/server/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// the editor UI is served from its own dev origin
		return true
	},
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

func openStorage(cfg config.StorageConfig, log *zap.Logger) (persistence.Storage, error) {
	if cfg.Type == "postgres" {
		db, err := persistence.NewPostgresStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("using PostgreSQL persistence")
		return db, nil
	}

	db, err := persistence.NewJSONStore(cfg.File)
	if err != nil {
		return nil, err
	}
	log.Info("using JSON persistence", zap.String("file", cfg.File))
	return db, nil
}

func runServe(ctx context.Context, configPath, mapName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openStorage(cfg.Storage, log)
	if err != nil {
		log.Error("failed to initialize persistence", zap.Error(err))
		return err
	}
	defer db.Close()

	maps := services.NewMapService(db, log)
	if mapName != "" {
		if err := maps.LoadFromStorage(mapName); err != nil {
			return fmt.Errorf("open map %s: %w", mapName, err)
		}
	} else if err := maps.NewMap(cfg.Map.Name, cfg.Map.Author, cfg.Map.Grid()); err != nil {
		return err
	}
	sessions := handlers.NewSessionManager()

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade connection", zap.Error(err))
			return
		}
		defer conn.Close()

		handlers.HandleEditorConnection(conn, maps, sessions, log)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("path", cfg.Server.Path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if maps.Dirty() {
		log.Warn("discarding unsaved changes", zap.Uint64("version", maps.Version()))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// readMap decodes a map document file without migrating it
func readMap(path string) (*models.MapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}
	m, err := services.ParseImport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeMap(path string, m *models.MapData) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// loadService opens a map document in a storage-less service
func loadService(path string) (*services.MapService, error) {
	m, err := readMap(path)
	if err != nil {
		return nil, err
	}
	svc := services.NewMapService(nil, zap.NewNop())
	if err := svc.Load(m); err != nil {
		return nil, err
	}
	return svc, nil
}

func runMigrate(in, out string) error {
	m, err := readMap(in)
	if err != nil {
		return err
	}
	migrated, err := services.MigrateMapToV2(m, time.Now())
	if err != nil {
		return err
	}
	if migrated == m {
		fmt.Printf("%s is already version %s\n", in, models.CurrentVersion)
	} else {
		fmt.Printf("migrated %s from version %q: %d cells, %d edges\n",
			in, m.Version, len(migrated.Cells), len(migrated.Edges))
	}
	return writeMap(out, migrated)
}

func runGenerateEdges(in, out string) error {
	svc, err := loadService(in)
	if err != nil {
		return err
	}
	count := svc.AutoGenerateEdges()
	fmt.Printf("generated %d edges\n", count)
	return writeMap(out, svc.Snapshot())
}

func runStats(path string) error {
	svc, err := loadService(path)
	if err != nil {
		return err
	}
	printStats(svc.Metadata(), svc.Stats())
	return nil
}

func runTerrain(file string) error {
	catalog := models.DefaultTerrainCatalog()
	if file != "" {
		var err error
		if catalog, err = models.LoadTerrainCatalog(file); err != nil {
			return err
		}
	}
	printTerrain(catalog)
	return nil
}

func runList(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openStorage(cfg.Storage, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.ListMaps()
	if err != nil {
		return err
	}
	printMapList(list)
	return nil
}

func runDelete(configPath, name string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openStorage(cfg.Storage, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	maps := services.NewMapService(db, zap.NewNop())
	if err := maps.DeleteStored(name); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", name)
	return nil
}
