package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// NewJournalCommand creates the journal command with all subcommands
func NewJournalCommand(container *app.Container, prompter ui.Prompter) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local log of submissions made from this machine",
	}

	journalCmd.AddCommand(
		newJournalListCommand(container),
		newJournalClearCommand(container, prompter),
		newJournalPathCommand(container),
	)

	return journalCmd
}

func newJournalListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Journal == nil {
				return fmt.Errorf(ErrJournalDisabled)
			}
			entries, err := container.Journal.Entries(limit)
			if err != nil {
				return fmt.Errorf("failed to read journal: %w", err)
			}
			ui.RenderJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultJournalLimit, "Max entries to show")
	return cmd
}

func newJournalClearCommand(container *app.Container, prompter ui.Prompter) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Journal == nil {
				return fmt.Errorf(ErrJournalDisabled)
			}
			if !yes {
				confirmed, err := prompter.Confirm("Delete all journal entries?", false)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), MsgClearCancelled)
					return nil
				}
			}
			if err := container.Journal.Clear(); err != nil {
				return fmt.Errorf("failed to clear journal: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgJournalCleared)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newJournalPathCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the journal location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Journal == nil {
				return fmt.Errorf(ErrJournalDisabled)
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.Journal.Path())
			return nil
		},
	}
}
