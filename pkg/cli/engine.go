package cli

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ula/pkg/common"
)

//go:embed cli.def
var DefaultDSL string

// Mutable
type Engine struct {
	GlobalFlags []*Flag
	Commands    []*Command
	Topics      []*Topic
	Handlers    map[string]Handler
	Theme       *Theme
	Out         io.Writer
}

func NewEngine(dsl string) (*Engine, error) {
	e := &Engine{
		Handlers: make(map[string]Handler),
		Theme:    DefaultTheme(),
		Out:      os.Stdout,
	}
	if err := newParser(dsl, e).parse(); err != nil {
		return nil, err
	}
	e.Commands = append(e.Commands, &Command{
		Name: "help",
		Desc: "Show help information",
	})
	return e, nil
}

// Register binds a handler to a command path such as "fs/import".
func (e *Engine) Register(cmdPath string, h Handler) {
	e.Handlers[cmdPath] = h
}

// Unhandled lists command paths that have no handler.
func (e *Engine) Unhandled() []string {
	var missing []string
	var walk func(cmds []*Command)
	walk = func(cmds []*Command) {
		for _, c := range cmds {
			if len(c.Subs) > 0 {
				walk(c.Subs)
				continue
			}
			if _, ok := e.Handlers[getCmdPath(c)]; !ok && c.Name != "help" {
				missing = append(missing, getCmdPath(c))
			}
		}
	}
	walk(e.Commands)
	return missing
}

type ParseResult struct {
	Invocation *Invocation
	Help       bool
	HelpArgs   []string
	Error      error
}

func (e *Engine) Run(ctx context.Context, args []string) (*common.ExecutionResult, error) {
	res := e.Parse(args)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Help {
		e.PrintHelp(res.HelpArgs...)
		return &common.ExecutionResult{ExitCode: 0}, nil
	}
	return e.Execute(ctx, res.Invocation)
}

func (e *Engine) Parse(args []string) *ParseResult {
	res := &ParseResult{
		Invocation: &Invocation{
			Args:   make(map[string]string),
			Flags:  make(map[string]any),
			Global: make(map[string]any),
		},
	}

	var remaining []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--help" || arg == "-h" {
			res.Help = true
			continue
		}
		if gf := matchFlag(e.GlobalFlags, arg); gf != nil {
			if gf.Type == "bool" {
				res.Invocation.Global[gf.Name] = true
				continue
			}
			if i+1 < len(args) {
				res.Invocation.Global[gf.Name] = args[i+1]
				i++
				continue
			}
			res.Error = fmt.Errorf("flag --%s needs a value", gf.Name)
			return res
		}
		remaining = append(remaining, arg)
	}

	if res.Help || len(remaining) == 0 {
		res.Help = true
		res.HelpArgs = remaining
		return res
	}
	if remaining[0] == "help" {
		res.Help = true
		res.HelpArgs = remaining[1:]
		return res
	}

	cmd, rest, err := e.resolve(e.Commands, remaining, true)
	if err != nil {
		res.Error = err
		return res
	}
	if len(cmd.Subs) > 0 {
		res.Help = true
		res.HelpArgs = strings.Split(getCmdPath(cmd), "/")
		return res
	}

	res.Invocation.Command = cmd
	if err := parseParams(res.Invocation, cmd, rest); err != nil {
		res.Error = fmt.Errorf("%s: %w", strings.ReplaceAll(getCmdPath(cmd), "/", " "), err)
	}
	return res
}

func (e *Engine) Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	path := getCmdPath(inv.Command)
	if h, ok := e.Handlers[path]; ok {
		return h.Execute(ctx, inv)
	}
	return nil, fmt.Errorf("no handler registered for command: %s", path)
}

// resolve walks args down the command tree. Unique prefixes are accepted.
// A group command is returned as is when the next word is missing or
// unknown, so the caller can show its help.
func (e *Engine) resolve(cmds []*Command, args []string, top bool) (*Command, []string, error) {
	word := args[0]
	cmd, err := match(cmds, word)
	if err != nil {
		return nil, nil, err
	}

	if cmd == nil && top {
		// Omitted parent: "ula import" for "ula fs import" when unambiguous.
		var subs []*Command
		for _, c := range cmds {
			subs = append(subs, c.Subs...)
		}
		if cmd, err = match(subs, word); err != nil {
			return nil, nil, err
		}
	}
	if cmd == nil {
		return nil, nil, fmt.Errorf("unknown command: %s", word)
	}

	rest := args[1:]
	if len(cmd.Subs) > 0 && len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		if sub, subRest, err := e.resolve(cmd.Subs, rest, false); err == nil {
			return sub, subRest, nil
		} else if !strings.HasPrefix(err.Error(), "unknown command") {
			return nil, nil, err
		}
	}
	return cmd, rest, nil
}

func match(cmds []*Command, word string) (*Command, error) {
	var exact, matches []*Command
	for _, c := range cmds {
		if c.Name == word {
			exact = append(exact, c)
		} else if strings.HasPrefix(c.Name, word) {
			matches = append(matches, c)
		}
	}
	// Names repeat across groups when the parent is omitted.
	if len(exact) > 0 {
		matches = exact
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}
	var names []string
	for _, m := range matches {
		names = append(names, strings.ReplaceAll(getCmdPath(m), "/", " "))
	}
	return nil, fmt.Errorf("ambiguous command: %s (candidates: %s)", word, strings.Join(names, ", "))
}

func matchFlag(flags []*Flag, arg string) *Flag {
	for _, f := range flags {
		if arg == "--"+f.Name || (f.Short != "" && arg == "-"+f.Short) {
			return f
		}
	}
	return nil
}

func parseParams(inv *Invocation, cmd *Command, args []string) error {
	argIdx := 0
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			f := matchFlag(cmd.Flags, arg)
			if f == nil {
				return fmt.Errorf("unknown flag %s", arg)
			}
			if f.Type == "bool" {
				inv.Flags[f.Name] = true
				continue
			}
			if i+1 >= len(args) {
				return fmt.Errorf("flag --%s needs a value", f.Name)
			}
			inv.Flags[f.Name] = args[i+1]
			i++
			continue
		}
		if argIdx >= len(cmd.Args) {
			return fmt.Errorf("unexpected argument %q", arg)
		}
		a := cmd.Args[argIdx]
		if a.Type == "int" {
			if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
				return fmt.Errorf("argument %s must be a number, got %q", a.Name, arg)
			}
		}
		inv.Args[a.Name] = arg
		argIdx++
	}

	if argIdx < len(cmd.Args) {
		return fmt.Errorf("argument %s is missing", cmd.Args[argIdx].Name)
	}
	return nil
}

func getCmdPath(c *Command) string {
	if c.Parent == nil {
		return c.Name
	}
	return getCmdPath(c.Parent) + "/" + c.Name
}
