package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tech-dispatch/internal/models"
)

func NewTechniciansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "technicians",
		Short: "Inspect and administer the technician registry",
	}
	cmd.AddCommand(newTechniciansListCommand())
	cmd.AddCommand(newTechniciansSetStatusCommand())
	return cmd
}

func newTechniciansListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List technicians in registry order",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWire(cmd.Context(), newLogger())
			if err != nil {
				return err
			}
			defer w.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLAT\tLON\tSTATUS")
			for _, t := range w.Registry.All() {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%s\n", t.Name, t.Location.Lat, t.Location.Lon, t.Status)
			}
			return tw.Flush()
		},
	}
}

// set-status only persists with the database registry source; other sources
// are rebuilt from their seed on every start.
func newTechniciansSetStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status NAME STATUS",
		Short: "Mark a technician Available or Busy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}

			w, err := loadWire(cmd.Context(), newLogger())
			if err != nil {
				return err
			}
			defer w.Close()

			if w.Technicians == nil {
				return fmt.Errorf("registry source %q is read-only; use source database to persist status", w.Config.Registry.Source)
			}
			if err := w.SetTechnicianStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], status)
			return nil
		},
	}
}
