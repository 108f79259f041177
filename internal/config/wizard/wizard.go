package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/imamik/akslab/internal/config"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks questions with huh forms.
type Prompter struct {
	// Accessible renders plain prompts for screen readers.
	Accessible bool
}

var _ config.Prompter = (*Prompter)(nil)

// Input asks one free-text question.
func (p *Prompter) Input(ctx context.Context, q config.Question) (string, error) {
	var answer string
	err := p.run(ctx, huh.NewGroup(inputField(q, &answer)).Title(q.Title))
	return answer, err
}

// Select shows an indexed menu and returns the chosen value.
func (p *Prompter) Select(ctx context.Context, title string, choices []config.Choice) (string, error) {
	var value string
	err := p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(toOptions(choices)...).
			Value(&value),
	))
	return value, err
}

// Confirm asks a yes/no question. The default answer is no.
func (p *Prompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := p.run(ctx, huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	return ok, err
}

func (p *Prompter) run(ctx context.Context, group *huh.Group) error {
	err := huh.NewForm(group).WithAccessible(p.Accessible).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

func inputField(q config.Question, answer *string) *huh.Input {
	in := huh.NewInput().
		Title(q.Title).
		Description(describe(q)).
		Placeholder(q.Placeholder).
		Value(answer)
	if len(q.Suggestions) > 0 {
		in = in.Suggestions(q.Suggestions)
	}
	return in
}

// describe appends the previous rejection to the question description.
func describe(q config.Question) string {
	if q.Problem == "" {
		return q.Description
	}
	if q.Description == "" {
		return "Invalid value: " + q.Problem
	}
	return q.Description + "\nInvalid value: " + q.Problem
}

func toOptions(choices []config.Choice) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		opts = append(opts, huh.NewOption(c.Label, c.Value))
	}
	return opts
}
