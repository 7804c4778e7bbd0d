package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks a yes/no question defaulting to yes. Aborting the prompt
// (ctrl+c) counts as no.
func Confirm(title string) (bool, error) {
	ok := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// RunWithSpinner runs action while showing a spinner titled title. When
// animate is false action runs without any terminal output.
func RunWithSpinner(title string, animate bool, action func()) error {
	if !animate {
		action()
		return nil
	}
	return spinner.New().
		Title(title).
		Action(action).
		Run()
}
