package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tech-dispatch/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultTechnicianSheet = "Technicians"
	DefaultReportSheet     = "Assignments"
)

var technicianHeaders = []interface{}{"Name", "Latitude", "Longitude", "Status"}

func parseCoord(val string) (float64, error) {
	// Replace comma with dot for locales using decimal commas
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// LoadTechnicians opens path and reads the technician roster from sheetName.
func LoadTechnicians(path, sheetName string) ([]models.Technician, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTechnicians(f, sheetName)
}

// ReadTechnicians reads rows of Name | Latitude | Longitude | Status after a header row.
// Blank rows are skipped; any other malformed row fails the whole read.
func ReadTechnicians(f *excelize.File, sheetName string) ([]models.Technician, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var techs []models.Technician
	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}
		if isBlank(row) {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("%s row %d: expected 4 columns, got %d", sheetName, i+1, len(row))
		}

		lat, err := parseCoord(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: latitude: %w", sheetName, i+1, err)
		}
		lon, err := parseCoord(row[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: longitude: %w", sheetName, i+1, err)
		}
		loc, err := models.NewCoordinate(lat, lon)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheetName, i+1, err)
		}
		status, err := models.ParseStatus(row[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheetName, i+1, err)
		}

		techs = append(techs, models.Technician{
			Name:     strings.TrimSpace(row[0]),
			Location: loc,
			Status:   status,
		})
	}
	return techs, nil
}

// NewTechnicianTemplate builds a workbook with the roster header and the given rows.
func NewTechnicianTemplate(techs []models.Technician) (*excelize.File, error) {
	rows := make([][]interface{}, 0, len(techs))
	for _, t := range techs {
		rows = append(rows, []interface{}{t.Name, t.Location.Lat, t.Location.Lon, string(t.Status)})
	}
	return streamSheet(DefaultTechnicianSheet, technicianHeaders, rows)
}

// NewReport builds the assignment report workbook.
func NewReport(data []models.Assignment, sheetName string) (*excelize.File, error) {
	headers := []interface{}{
		"Issue ID", "Station", "Problem", "Station Lat", "Station Lon",
		"Technician", "Technician Lat", "Technician Lon", "Distance (km)", "Reported At",
	}
	rows := make([][]interface{}, 0, len(data))
	for _, a := range data {
		rows = append(rows, []interface{}{
			a.Issue.ID, a.Issue.StationName, a.Issue.ProblemDescription,
			a.Issue.Location.Lat, a.Issue.Location.Lon,
			a.Technician.Name, a.Technician.Location.Lat, a.Technician.Location.Lon,
			roundKm(a.DistanceKm), a.Issue.ReportedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return streamSheet(sheetName, headers, rows)
}

func WriteResult(path string, data []models.Assignment, sheetName string) error {
	f, err := NewReport(data, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func streamSheet(sheetName string, headers []interface{}, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillSheet(f, sheetName, headers, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillSheet(f *excelize.File, sheetName string, headers []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	// Delete default sheet if exists
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return nil
}

func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
