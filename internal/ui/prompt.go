package ui

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin is attached to a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptText asks the user for a line of text
func PromptText(message string) (string, error) {
	var text string
	prompt := &survey.Input{
		Message: message,
	}

	if err := survey.AskOne(prompt, &text, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return text, nil
}

// PromptMultiline opens an editor-style prompt for longer passages
func PromptMultiline(message string) (string, error) {
	var text string
	prompt := &survey.Multiline{
		Message: message,
	}

	if err := survey.AskOne(prompt, &text, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return text, nil
}

// Confirm asks a yes/no question
func Confirm(message string, def bool) (bool, error) {
	answer := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}

	return answer, nil
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(os.Stderr, "✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection prints a bold cyan heading
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
}

// Label formats a key in the dim style used for field names
func Label(key string) string {
	return color.New(color.Faint).Sprint(key)
}
