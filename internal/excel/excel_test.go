package excel_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tech-dispatch/internal/excel"
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/registry"
)

func rosterWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	_, err := f.NewSheet("Technicians")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Technicians", "A1", &[]interface{}{"Name", "Latitude", "Longitude", "Status"}))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Technicians", cell, &row))
	}
	return f
}

func TestReadTechnicians(t *testing.T) {
	f := rosterWorkbook(t, [][]interface{}{
		{"Ravi", "12.9750", "77.6000", "Available"},
		{"Kumar", "12,9650", "77,5900", "busy"},
		{"", "", "", ""},
		{" Suresh ", 12.96, 77.585, "AVAILABLE"},
	})

	techs, err := excel.ReadTechnicians(f, "Technicians")

	require.NoError(t, err)
	require.Len(t, techs, 3)
	assert.Equal(t, models.Technician{Name: "Ravi", Location: models.MustCoordinate(12.975, 77.6), Status: models.StatusAvailable}, techs[0])
	assert.Equal(t, models.StatusBusy, techs[1].Status)
	assert.InDelta(t, 12.965, techs[1].Location.Lat, 1e-9)
	assert.Equal(t, "Suresh", techs[2].Name)
}

func TestReadTechnicians_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
	}{
		{"short row", []interface{}{"Ravi", "12.9"}},
		{"bad latitude", []interface{}{"Ravi", "north", "77.6", "Available"}},
		{"out of range", []interface{}{"Ravi", "95", "77.6", "Available"}},
		{"bad status", []interface{}{"Ravi", "12.9", "77.6", "On leave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rosterWorkbook(t, [][]interface{}{tt.row})

			_, err := excel.ReadTechnicians(f, "Technicians")

			assert.Error(t, err)
		})
	}
}

func TestTechnicianTemplate_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f, err := excel.NewTechnicianTemplate(registry.DefaultTechnicians())
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))

	techs, err := excel.LoadTechnicians(path, excel.DefaultTechnicianSheet)

	require.NoError(t, err)
	assert.Equal(t, registry.DefaultTechnicians(), techs)
}

func TestWriteResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	issue := models.NewIssue("MG Road Fuels", "Pump 3 not dispensing", models.MustCoordinate(12.9716, 77.5946))
	issue.ReportedAt = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	a := models.Assignment{
		Issue:      issue,
		Technician: registry.DefaultTechnicians()[0],
		DistanceKm: 0.6966374,
	}

	require.NoError(t, excel.WriteResult(path, []models.Assignment{a}, excel.DefaultReportSheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{excel.DefaultReportSheet}, f.GetSheetList())

	rows, err := f.GetRows(excel.DefaultReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Technician", rows[0][5])
	assert.Equal(t, issue.ID, rows[1][0])
	assert.Equal(t, "MG Road Fuels", rows[1][1])
	assert.Equal(t, "Ravi", rows[1][5])
	assert.Equal(t, "0.697", rows[1][8])
	assert.Equal(t, "2026-10-16 09:30:00", rows[1][9])
}

func TestNewReport_InvalidSheetName(t *testing.T) {
	f, err := excel.NewReport(nil, "Assignments[2026]")

	assert.Error(t, err)
	assert.Nil(t, f)
}
