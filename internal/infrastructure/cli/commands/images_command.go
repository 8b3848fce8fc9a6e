package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

// NewImagesCommand creates the images command with all subcommands
func NewImagesCommand(container *app.Container) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "List images uploaded to the service",
	}

	imagesCmd.AddCommand(
		newImagesListCommand(container),
		newImagesURLCommand(container),
	)

	return imagesCmd
}

func newImagesListCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded images with fresh preview URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(container); err != nil {
				return err
			}
			refs, err := container.Client.Images(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", domain.MsgImageLookupFailed, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), refs)
			}
			ui.RenderImages(cmd.OutOrStdout(), refs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print images as JSON")
	return cmd
}

func newImagesURLCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "url <image-id>",
		Short: "Print a fresh preview URL for an uploaded image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(container); err != nil {
				return err
			}
			ref, err := container.Client.ImageURL(cmd.Context(), domain.ImageID(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", domain.UserMessage(err, domain.MsgImageLookupFailed), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref.URL)
			return nil
		},
	}
}
