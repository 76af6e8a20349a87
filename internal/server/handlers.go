package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"tech-dispatch/internal/excel"
	"tech-dispatch/internal/location"
	"tech-dispatch/internal/mapview"
	"tech-dispatch/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type submitRequest struct {
	StationName        string      `form:"station_name" json:"station_name"`
	ProblemDescription string      `form:"problem_description" json:"problem_description"`
	Lat                json.Number `form:"lat" json:"lat"`
	Lon                json.Number `form:"lon" json:"lon"`
}

// optionalFloat reads a coordinate that may be absent. A missing or blank
// value means the location is unavailable.
func optionalFloat(field string, n json.Number) (*float64, error) {
	v := strings.TrimSpace(string(n))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", field, v)
	}
	return &f, nil
}

type statusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s.state(c).Snapshot()})
}

func (s *Server) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	lat, err := optionalFloat("lat", req.Lat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	lon, err := optionalFloat("lon", req.Lon)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	loc, err := location.Resolve(lat, lon, s.wire.DefaultLocation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	issue := models.NewIssue(req.StationName, req.ProblemDescription, loc.Coordinate)
	view, err := s.state(c).Submit(issue)
	if err != nil {
		s.logger.Printf("Submit failed for issue %s: %v", issue.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                    true,
		"used_default_location": loc.UsedDefault,
		"session":               view,
	})
}

func (s *Server) reset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s.state(c).Reset()})
}

func (s *Server) getMap(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Build(s.state(c).Snapshot(), s.wire.DefaultLocation))
}

func (s *Server) exportAssignment(c *gin.Context) {
	view := s.state(c).Snapshot()
	if !view.HasAssignment() {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no assignment to export"})
		return
	}

	f, err := excel.NewReport([]models.Assignment{*view.Assignment}, excel.DefaultReportSheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	s.writeWorkbook(c, f, fmt.Sprintf("assignment_%s.xlsx", view.Assignment.Issue.ID))
}

func (s *Server) downloadTemplate(c *gin.Context) {
	f, err := excel.NewTechnicianTemplate(s.wire.Registry.All())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	s.writeWorkbook(c, f, "technicians_template.xlsx")
}

func (s *Server) listTechnicians(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "technicians": s.wire.Registry.All()})
}

// nearbyTechnicians ranks available technicians around the session's issue,
// or around the default location when no issue is open.
func (s *Server) nearbyTechnicians(c *gin.Context) {
	radius := s.wire.Config.Dispatch.NearbyRadiusKm
	if q := c.Query("radius_km"); q != "" {
		r, err := strconv.ParseFloat(q, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "radius_km must be a positive number"})
			return
		}
		radius = r
	}

	center := s.wire.DefaultLocation
	if v := s.state(c).Snapshot(); v.Issue != nil {
		center = v.Issue.Location
	}

	candidates := s.wire.Selector.Nearby(center, s.wire.Registry, radius)
	out := make([]gin.H, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, gin.H{
			"name":        cand.Technician.Name,
			"location":    cand.Technician.Location,
			"distance_km": cand.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "center": center, "radius_km": radius, "technicians": out})
}

func (s *Server) setTechnicianStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	name := c.Param("name")
	if err := s.wire.SetTechnicianStatus(c.Request.Context(), name, status); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, models.ErrUnknownTechnician) {
			code = http.StatusNotFound
		}
		c.JSON(code, gin.H{"ok": false, "error": err.Error()})
		return
	}

	t, _ := s.wire.Registry.Get(name)
	s.logger.Printf("Technician %s marked %s", name, status)
	c.JSON(http.StatusOK, gin.H{"ok": true, "technician": t})
}

func (s *Server) writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	defer f.Close()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		s.logger.Printf("Failed to write %s: %v", filename, err)
	}
}
