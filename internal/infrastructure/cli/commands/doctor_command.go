package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, session, journal and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.DoctorService == nil {
				return fmt.Errorf(ErrDoctorServiceUnavailable)
			}

			report, err := container.DoctorService.Run(cmd.Context())

			// Display report even if there were errors
			ui.RenderHealthReport(cmd.OutOrStdout(), report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.Failed() {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}
