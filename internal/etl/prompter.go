package etl

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompter asks the operator for the manual parts of the ETL.
type Prompter interface {
	// Confirm blocks until the operator confirms the links are saved.
	Confirm(ctx context.Context, title, description string) error
	// Title asks for a non-empty article title.
	Title(ctx context.Context, url string) (string, error)
}

// ErrAborted is returned when the operator declines to continue.
var ErrAborted = errors.New("aborted by operator")

// ConsolePrompter renders prompts on the terminal.
type ConsolePrompter struct {
	Accessible bool
}

// Confirm shows a yes/no prompt. Answering no waits for a second
// confirmation before giving up.
func (p ConsolePrompter) Confirm(ctx context.Context, title, description string) error {
	ready := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Continue").
			Negative("Wait").
			Value(&ready),
	)).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}
	if ready {
		return nil
	}

	again := true
	retry := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Ready to proceed?").
			Affirmative("Proceed").
			Negative("Abort").
			Value(&again),
	)).WithAccessible(p.Accessible)
	if err := retry.RunWithContext(ctx); err != nil {
		return err
	}
	if !again {
		return ErrAborted
	}
	return nil
}

// Title prompts until a non-empty title is entered.
func (p ConsolePrompter) Title(ctx context.Context, url string) (string, error) {
	var title string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Article title").
			Description(url).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("title cannot be empty")
				}
				return nil
			}).
			Value(&title),
	)).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}
