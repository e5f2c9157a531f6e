package cli

import (
	stderrors "errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dpshade/character-template/internal/errors"
)

// Prompter asks the questions of the interactive generate flow. The survey-backed
// implementation needs a real terminal; tests substitute a scripted one.
type Prompter interface {
	Input(message, def string) (string, error)
	Select(message string, options []string, def string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func newSurveyPrompter() Prompter {
	return surveyPrompter{}
}

func (surveyPrompter) Input(message, def string) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if def != "" {
		prompt.Default = def
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if stderrors.Is(err, terminal.InterruptErr) {
		return errors.NewAppError(errors.ErrCodeCommandFailed, "Cancelled")
	}
	return errors.Wrap(err, errors.ErrCodeInvalidInput, "Prompt failed")
}
