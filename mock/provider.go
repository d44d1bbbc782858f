// Package mock provides test doubles for ragchat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/ragchat"
)

// Interface compliance check.
var _ ragchat.Asker = (*Asker)(nil)

// Asker is a test double for ragchat.Asker.
// Set AskFn before calling Ask.
type Asker struct {
	AskFn func(ctx context.Context, req ragchat.Request) (ragchat.Stream, error)
}

// Ask delegates to AskFn.
func (a *Asker) Ask(ctx context.Context, req ragchat.Request) (ragchat.Stream, error) {
	return a.AskFn(ctx, req)
}
