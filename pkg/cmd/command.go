// Package cmd is the transport-neutral command core shared by the slash
// command adapter and its middleware.
package cmd

import "context"

// Invocation is what an adapter hands to a command. Data holds the
// adapter's own context, for Discord a *command.SlashInteractionContext.
type Invocation struct {
	Args []string
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// DataAs returns inv.Data as T when it has that type.
func DataAs[T any](inv *Invocation) (T, bool) {
	var zero T
	if inv == nil {
		return zero, false
	}
	v, ok := inv.Data.(T)
	return v, ok
}
