package app_test

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tech-dispatch/internal/app"
	"tech-dispatch/internal/config"
	"tech-dispatch/internal/excel"
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/registry"
	"tech-dispatch/internal/session"
)

var discard = log.New(io.Discard, "", 0)

func TestNewWire_Builtin(t *testing.T) {
	w, err := app.NewWire(context.Background(), config.Default(), discard)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 4, w.Registry.Len())
	assert.Nil(t, w.Technicians)
	assert.Equal(t, models.MustCoordinate(12.9716, 77.5946), w.DefaultLocation)

	v, err := w.NewSession().Submit(models.NewIssue("", "", w.DefaultLocation))
	require.NoError(t, err)
	assert.Equal(t, "Ravi", v.Technician)
}

func TestNewWire_Xlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	roster := []models.Technician{
		{Name: "Suresh", Location: models.MustCoordinate(12.96, 77.585), Status: models.StatusAvailable},
		{Name: "Ravi", Location: models.MustCoordinate(12.975, 77.6), Status: models.StatusBusy},
	}
	f, err := excel.NewTechnicianTemplate(roster)
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))

	cfg := config.Default()
	cfg.Registry.Source = "xlsx"
	cfg.Registry.Path = path

	w, err := app.NewWire(context.Background(), cfg, discard)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, roster, w.Registry.All())
}

func TestNewWire_XlsxMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Source = "xlsx"
	cfg.Registry.Path = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := app.NewWire(context.Background(), cfg, discard)

	assert.Error(t, err)
}

func databaseConfig() *config.Config {
	cfg := config.Default()
	cfg.Registry.Source = "database"
	cfg.Database = config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}
	return cfg
}

func TestNewWire_DatabaseSeedsWhenEmpty(t *testing.T) {
	ctx := context.Background()

	w, err := app.NewWire(ctx, databaseConfig(), discard)
	require.NoError(t, err)
	defer w.Close()

	require.NotNil(t, w.Technicians)
	assert.Equal(t, registry.DefaultTechnicians(), w.Registry.All())
}

func TestWire_SetTechnicianStatusWritesThrough(t *testing.T) {
	ctx := context.Background()
	w, err := app.NewWire(ctx, databaseConfig(), discard)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.SetTechnicianStatus(ctx, "Ravi", models.StatusBusy))

	got, ok := w.Registry.Get("Ravi")
	require.True(t, ok)
	assert.Equal(t, models.StatusBusy, got.Status)

	stored, err := w.Technicians.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBusy, stored[0].Status)
}

func TestWire_SetTechnicianStatusUnknown(t *testing.T) {
	w, err := app.NewWire(context.Background(), config.Default(), discard)
	require.NoError(t, err)

	err = w.SetTechnicianStatus(context.Background(), "Nobody", models.StatusBusy)

	assert.True(t, errors.Is(err, models.ErrUnknownTechnician))
}

func TestWire_SessionsShareRegistry(t *testing.T) {
	ctx := context.Background()
	w, err := app.NewWire(ctx, config.Default(), discard)
	require.NoError(t, err)

	a := w.Sessions.GetOrCreate(session.NewID())
	b := w.Sessions.GetOrCreate(session.NewID())
	require.NoError(t, w.SetTechnicianStatus(ctx, "Ravi", models.StatusBusy))

	va, err := a.Submit(models.NewIssue("", "", w.DefaultLocation))
	require.NoError(t, err)
	assert.Equal(t, "Kumar", va.Technician)
	assert.Equal(t, session.ConditionIdle, b.Snapshot().Condition)
}
