package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tech-dispatch/internal/excel"
	"tech-dispatch/internal/location"
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/session"
)

func NewAssignCommand() *cobra.Command {
	var (
		station, problem, exportPath string
		lat, lon                     float64
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Report an issue and print the technician it is assigned to",
		Long: `Report an issue and print the nearest available technician.
When --lat/--lon are not both given the configured default location is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWire(cmd.Context(), newLogger())
			if err != nil {
				return err
			}
			defer w.Close()

			var latp, lonp *float64
			if cmd.Flags().Changed("lat") {
				latp = &lat
			}
			if cmd.Flags().Changed("lon") {
				lonp = &lon
			}
			loc, err := location.Resolve(latp, lonp, w.DefaultLocation)
			if err != nil {
				return err
			}

			view, err := w.NewSession().Submit(models.NewIssue(station, problem, loc.Coordinate))
			if err != nil {
				return err
			}

			printView(cmd.OutOrStdout(), view, loc.UsedDefault)

			if exportPath != "" && view.HasAssignment() {
				if err := excel.WriteResult(exportPath, []models.Assignment{*view.Assignment}, excel.DefaultReportSheet); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", exportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "Petrol station name")
	cmd.Flags().StringVar(&problem, "problem", "", "Technical problem faced")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Station latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Station longitude")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the assignment to this .xlsx file")
	return cmd
}

func printView(out io.Writer, v session.View, usedDefault bool) {
	fmt.Fprintln(out, v.Message)
	if v.Issue == nil {
		return
	}
	if usedDefault {
		fmt.Fprintln(out, "(location unavailable, using default)")
	}
	fmt.Fprintf(out, "Station:    %s\n", v.Issue.StationName)
	fmt.Fprintf(out, "Problem:    %s\n", v.Issue.ProblemDescription)
	fmt.Fprintf(out, "Location:   %.4f, %.4f\n", v.Issue.Location.Lat, v.Issue.Location.Lon)
	if v.HasAssignment() {
		fmt.Fprintf(out, "Technician: %s\n", v.Technician)
		fmt.Fprintf(out, "Distance:   %.2f km\n", *v.DistanceKm)
		fmt.Fprintf(out, "Status:     %s\n", v.Status)
	}
}
