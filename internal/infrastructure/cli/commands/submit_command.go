package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/widgera/internal/app"
	"github.com/doeshing/widgera/internal/application/attachment"
	"github.com/doeshing/widgera/internal/application/submission"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/infrastructure/cli/ui"
)

type submitOptions struct {
	prompt      string
	fields      []string
	image       string
	imageID     string
	interactive bool
	jsonOutput  bool
	timeout     time.Duration
}

// NewSubmitCommand creates the submit command
func NewSubmitCommand(container *app.Container, prompter ui.Prompter) *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit [prompt]",
		Short: "Extract schema-shaped output from a prompt",
		Long: `Send a prompt, an output schema and an optional image to the Widgera service.

Fields are given as name:type, where type is string (default) or number:

  widgera submit -f name -f age:number "John is 42 years old"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prompt == "" && len(args) > 0 {
				opts.prompt = strings.Join(args, " ")
			}
			return runSubmit(cmd, container, prompter, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "Prompt text")
	cmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "Output field as name[:string|number] (repeatable)")
	cmd.Flags().StringVarP(&opts.image, "image", "i", "", "Image file to attach (max 10MB)")
	cmd.Flags().StringVar(&opts.imageID, "image-id", "", "Attach an already uploaded image by id (see: widgera images list)")
	cmd.MarkFlagsMutuallyExclusive("image", "image-id")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "I", false, "Edit prompt, fields and image interactively")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the raw output mapping as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the whole submission after this long")
	return cmd
}

func runSubmit(cmd *cobra.Command, container *app.Container, prompter ui.Prompter, opts submitOptions) error {
	if err := requireSession(container); err != nil {
		return err
	}
	fields, err := parseFieldFlags(opts.fields)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	out := cmd.OutOrStdout()
	ctl := container.NewSubmission(fields...)
	if opts.interactive {
		if err := fillInteractively(prompter, ctl, out, &opts); err != nil {
			return err
		}
	}
	if strings.TrimSpace(opts.prompt) == "" {
		return fmt.Errorf(ErrPromptRequired)
	}
	ctl.SetPrompt(opts.prompt)

	// Schema errors are local; report them before paying for an upload.
	if err := ctl.Editor().Validate(); err != nil {
		return err
	}

	spinner := ui.NewSpinner(cmd.ErrOrStderr())
	defer spinner.Stop()

	switch {
	case opts.imageID != "":
		spinner.Start("Looking up image " + opts.imageID)
		_, err := ctl.Attachment().Use(ctx, domain.ImageID(opts.imageID))
		spinner.Stop()
		if err != nil {
			return err
		}
	case opts.image != "":
		file, err := attachment.OpenFile(opts.image)
		if err != nil {
			return err
		}
		spinner.Start("Uploading " + file.Name)
		state, err := ctl.Attachment().Select(ctx, file)
		spinner.Stop()
		if err != nil {
			return err
		}
		if state.Notice != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s\n", state.Notice)
		}
	}

	spinner.Start("Extracting")
	state, err := ctl.Submit(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(out, state.Result.Output)
	}
	ui.RenderSubmission(out, withoutNotice(state))
	return nil
}

func parseFieldFlags(specs []string) ([]domain.FieldDefinition, error) {
	var fields []domain.FieldDefinition
	for _, spec := range specs {
		for _, part := range strings.Split(spec, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			field, err := domain.ParseFieldSpec(part)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
	}
	return fields, nil
}

func fillInteractively(prompter ui.Prompter, ctl *submission.Controller, out io.Writer, opts *submitOptions) error {
	if opts.prompt == "" {
		prompt, err := prompter.Input("Prompt", "")
		if err != nil {
			return err
		}
		opts.prompt = prompt
	}
	if err := ui.EditSchema(prompter, ctl.Editor(), out); err != nil {
		return err
	}
	if opts.image == "" {
		image, err := prompter.Input("Image path (optional)", "")
		if err != nil {
			return err
		}
		opts.image = strings.TrimSpace(image)
	}
	return nil
}

// withoutNotice drops the duplicate-upload notice, already printed on stderr.
func withoutNotice(state domain.SubmissionState) domain.SubmissionState {
	state.Attachment.Notice = ""
	return state
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
