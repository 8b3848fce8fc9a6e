package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Review past submissions stored by the service",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryShowCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(container); err != nil {
				return err
			}
			if _, err := container.HistoryStore.Refresh(cmd.Context()); err != nil {
				return err
			}
			records := container.HistoryStore.Records()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			ui.RenderHistoryList(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

// newHistoryShowCommand creates the 'history show' subcommand
func newHistoryShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission with its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := requireSession(container); err != nil {
				return err
			}
			if _, err := container.HistoryStore.Refresh(cmd.Context()); err != nil {
				return err
			}
			rec, ok := container.HistoryStore.Lookup(id)
			if !ok {
				return fmt.Errorf("no submission with id %d", id)
			}
			ui.RenderHistoryRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}
