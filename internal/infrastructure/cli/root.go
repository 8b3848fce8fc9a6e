package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/infrastructure/cli/commands"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	// Prompter overrides the interactive terminal prompter.
	Prompter ui.Prompter
}

type verboseSetter interface {
	SetVerbose(bool)
}

// NewRootCmd builds the container and wires the cobra root command. The
// returned closer releases the container's resources.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, io.Closer, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, nil, err
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = ui.NewSurveyPrompter()
	}
	return NewRootWithContainer(container, prompter), container, nil
}

// NewRootWithContainer wires the command tree around an existing container.
func NewRootWithContainer(container *app.Container, prompter ui.Prompter) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "widgera",
		Short: "Widgera - schema-driven extraction from prompts and images",
		Long: `Widgera sends a prompt, an optional image and an output schema to the
Widgera service and prints the extracted values in schema order.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !debug {
				return
			}
			if l, ok := container.Logger.(verboseSetter); ok {
				l.SetVerbose(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable verbose logging")

	root.AddCommand(
		commands.NewSubmitCommand(container, prompter),
		commands.NewLoginCommand(container, prompter),
		commands.NewRegisterCommand(container, prompter),
		commands.NewLogoutCommand(container),
		commands.NewWhoamiCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewImagesCommand(container),
		commands.NewJournalCommand(container, prompter),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)
	return root
}
