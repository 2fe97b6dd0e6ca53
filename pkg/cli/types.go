package cli

import (
	"context"
	"fmt"
	"strconv"

	"ula/pkg/common"
)

type Flag struct {
	Name  string
	Short string
	Type  string // "bool", "string"
	Desc  string
}

type Arg struct {
	Name string
	Type string // "string", "int"
	Desc string
}

type Command struct {
	Name     string
	Desc     string
	Args     []*Arg
	Flags    []*Flag
	Subs     []*Command
	Parent   *Command
	Examples []string
}

type Topic struct {
	Name string
	Desc string
	Text string
}

// Invocation is a parsed command line.
type Invocation struct {
	Command *Command
	Args    map[string]string
	Flags   map[string]any
	Global  map[string]any
}

// String returns the flag value, or "" when it was not given.
func (inv *Invocation) String(flag string) string {
	s, _ := inv.Flags[flag].(string)
	return s
}

func (inv *Invocation) Bool(flag string) bool {
	b, _ := inv.Flags[flag].(bool)
	return b
}

// ID parses the named argument as a record id.
func (inv *Invocation) ID(arg string) (int64, error) {
	v := inv.Args[arg]
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("argument %s: %q is not a valid id", arg, v)
	}
	return id, nil
}

type Handler interface {
	Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error)

func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return f(ctx, inv)
}
