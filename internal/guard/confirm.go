package guard

import "context"

// Prompt describes what an operator is asked to confirm.
type Prompt struct {
	Operation string
	Actor     string
	Phrase    string
	Summary   string
}

// Confirmer obtains the operator's answer to a confirmation prompt.
// The answer must equal Prompt.Phrase exactly for the run to proceed.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (string, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (string, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// Phrase is a confirmation supplied up front, for API callers and tests.
type Phrase string

// Confirm returns the phrase unchanged.
func (p Phrase) Confirm(_ context.Context, _ Prompt) (string, error) {
	return string(p), nil
}
