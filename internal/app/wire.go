package app

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"tech-dispatch/internal/config"
	"tech-dispatch/internal/database"
	"tech-dispatch/internal/dispatch"
	"tech-dispatch/internal/excel"
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/persistence"
	"tech-dispatch/internal/registry"
	"tech-dispatch/internal/session"
)

// Wire bundles the registry, selector and sessions for commands and handlers.
type Wire struct {
	Config          *config.Config
	Registry        *registry.Registry
	Selector        *dispatch.Selector
	Sessions        *session.Store
	DefaultLocation models.Coordinate

	// Technicians is set only when the roster lives in the database.
	Technicians *persistence.GormTechnicianRepository

	db *gorm.DB
}

// NewWire constructs the dependency graph from cfg.
func NewWire(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Wire, error) {
	fallback, err := cfg.Dispatch.DefaultLocation.Coordinate()
	if err != nil {
		return nil, fmt.Errorf("default location: %w", err)
	}

	w := &Wire{Config: cfg, DefaultLocation: fallback}

	techs, err := w.loadRoster(ctx)
	if err != nil {
		w.Close()
		return nil, err
	}

	reg, err := registry.New(techs...)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}
	logger.Printf("Loaded %d technicians from %s registry", reg.Len(), cfg.Registry.Source)

	w.Registry = reg
	w.Selector = dispatch.NewSelector(func(msg string) { logger.Println(msg) })
	w.Sessions = session.NewStore(w.NewSession)
	return w, nil
}

// NewSession starts an Idle session bound to the shared registry.
func (w *Wire) NewSession() *session.State {
	return session.NewState(w.Selector, w.Registry)
}

// SetTechnicianStatus changes a status in the registry, writing it to the
// database first when the roster is stored there.
func (w *Wire) SetTechnicianStatus(ctx context.Context, name string, status models.Status) error {
	if !status.Valid() {
		return &models.InvalidStatusError{Value: string(status)}
	}
	if _, ok := w.Registry.Get(name); !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownTechnician, name)
	}
	if w.Technicians != nil {
		if err := w.Technicians.UpdateStatus(ctx, name, status); err != nil {
			return err
		}
	}
	return w.Registry.SetStatus(name, status)
}

func (w *Wire) Close() error {
	if w.db == nil {
		return nil
	}
	err := database.Close(w.db)
	w.db = nil
	return err
}

func (w *Wire) loadRoster(ctx context.Context) ([]models.Technician, error) {
	rc := w.Config.Registry

	switch rc.Source {
	case "builtin":
		return registry.DefaultTechnicians(), nil

	case "xlsx":
		sheet := rc.Sheet
		if sheet == "" {
			sheet = excel.DefaultTechnicianSheet
		}
		techs, err := excel.LoadTechnicians(rc.Path, sheet)
		if err != nil {
			return nil, fmt.Errorf("load technicians from %s: %w", rc.Path, err)
		}
		return techs, nil

	case "database":
		db, err := database.NewConnection(&w.Config.Database)
		if err != nil {
			return nil, err
		}
		w.db = db
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		repo := persistence.NewGormTechnicianRepository(db)
		if rc.SeedIfEmpty {
			n, err := repo.Count(ctx)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				if err := repo.Seed(ctx, registry.DefaultTechnicians()); err != nil {
					return nil, err
				}
			}
		}
		w.Technicians = repo
		return repo.List(ctx)
	}

	return nil, fmt.Errorf("unsupported registry source: %s", rc.Source)
}
