package service

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts an ordinary function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Always is a Confirmer that approves without asking, for callers that
// obtained consent some other way.
var Always Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
