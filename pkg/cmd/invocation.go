// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord slash, CLI) is defined by adapters that wrap this.
package cmd

import (
	"context"
	"errors"
)

// ErrUnsupportedInvocation is returned by adapters when Invocation.Data is not
// a context they know how to run.
var ErrUnsupportedInvocation = errors.New("unsupported invocation data")

// Invocation carries the input a runner passes to a command. Adapters set Data
// to their own context (e.g. a slash interaction context).
type Invocation struct {
	Data interface{}
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
