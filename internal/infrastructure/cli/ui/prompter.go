// Package ui holds the terminal presentation pieces shared by commands:
// prompts, the spinner and result rendering.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/doeshing/widgera/internal/application/schema"
	"github.com/doeshing/widgera/internal/domain"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks the user for input. SurveyPrompter is the terminal
// implementation; tests script their own.
type Prompter interface {
	Input(message, def string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, def bool) (bool, error)
	Select(message string, options []string, def string) (string, error)
}

// SurveyPrompter implements Prompter on an interactive terminal.
type SurveyPrompter struct{}

// NewSurveyPrompter constructs a terminal prompter.
func NewSurveyPrompter() *SurveyPrompter {
	return &SurveyPrompter{}
}

func (SurveyPrompter) Input(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func (SurveyPrompter) Password(message string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Password{Message: message}, &out)
	return out, translateSurveyErr(err)
}

func (SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func (SurveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if def != "" {
		prompt.Default = def
	}
	err := survey.AskOne(prompt, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Schema editor menu entries.
const (
	ActionAdd    = "Add field"
	ActionEdit   = "Edit field"
	ActionRemove = "Remove field"
	ActionDone   = "Done"
)

// EditSchema runs the interactive field editor until the user picks Done
// with a schema that passes validation. Validation messages are printed and
// the loop continues.
func EditSchema(p Prompter, editor *schema.Editor, out io.Writer) error {
	for {
		fields := editor.Fields()
		RenderSchema(out, fields)

		actions := []string{ActionAdd, ActionEdit}
		if len(fields) > 1 {
			actions = append(actions, ActionRemove)
		}
		actions = append(actions, ActionDone)

		action, err := p.Select("Output fields", actions, "")
		if err != nil {
			return err
		}
		switch action {
		case ActionAdd:
			idx := editor.AddField()
			if err := editField(p, editor, idx, domain.NewField()); err != nil {
				return err
			}
		case ActionEdit:
			idx, err := pickField(p, "Edit which field?", fields)
			if err != nil {
				return err
			}
			if err := editField(p, editor, idx, fields[idx]); err != nil {
				return err
			}
		case ActionRemove:
			idx, err := pickField(p, "Remove which field?", fields)
			if err != nil {
				return err
			}
			editor.RemoveField(idx)
		case ActionDone:
			if err := editor.Validate(); err != nil {
				fmt.Fprintf(out, "! %s\n", err)
				continue
			}
			return nil
		}
	}
}

func editField(p Prompter, editor *schema.Editor, idx int, current domain.FieldDefinition) error {
	name, err := p.Input(fmt.Sprintf("Field %d name", idx+1), current.Name)
	if err != nil {
		return err
	}
	if err := editor.UpdateField(idx, domain.FieldKeyName, strings.TrimSpace(name)); err != nil {
		return err
	}
	types := make([]string, len(domain.FieldTypes))
	for i, t := range domain.FieldTypes {
		types[i] = string(t)
	}
	typ, err := p.Select(fmt.Sprintf("Field %d type", idx+1), types, string(current.Type))
	if err != nil {
		return err
	}
	return editor.UpdateField(idx, domain.FieldKeyType, typ)
}

func pickField(p Prompter, message string, fields domain.Schema) (int, error) {
	options := make([]string, len(fields))
	for i, f := range fields {
		options[i] = fieldLabel(i, f)
	}
	choice, err := p.Select(message, options, "")
	if err != nil {
		return 0, err
	}
	for i, opt := range options {
		if opt == choice {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", choice)
}

func fieldLabel(i int, f domain.FieldDefinition) string {
	name := f.Name
	if name == "" {
		name = "(unnamed)"
	}
	return strconv.Itoa(i+1) + ". " + name + " (" + string(f.Type) + ")"
}
