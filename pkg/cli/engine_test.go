package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"ula/pkg/common"
)

type mockHandler struct {
	err error
	inv *Invocation
}

func (m *mockHandler) Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	m.inv = inv
	return &common.ExecutionResult{}, m.err
}

func newTestEngine(t *testing.T, dsl string) (*Engine, *bytes.Buffer) {
	t.Helper()
	engine, err := NewEngine(dsl)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	var out bytes.Buffer
	engine.Out = &out
	engine.Theme = PlainTheme()
	return engine, &out
}

func TestEngineErrorPropagation(t *testing.T) {
	dsl := `
cmd parent "Parent command"
cmd parent child "Child command"
    arg required string "Required argument"
`
	engine, _ := newTestEngine(t, dsl)
	h := &mockHandler{err: fmt.Errorf("handler failed")}
	engine.Register("parent/child", h)

	_, err := engine.Run(context.Background(), []string{"parent", "child"})
	if err == nil || !strings.Contains(err.Error(), "argument required is missing") {
		t.Fatalf("expected missing argument error, got %v", err)
	}
	if h.inv != nil {
		t.Error("handler must not run when parsing fails")
	}

	_, err = engine.Run(context.Background(), []string{"parent", "child", "x"})
	if err == nil || err.Error() != "handler failed" {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestEngineUnknownCommand(t *testing.T) {
	dsl := `
cmd parent "Parent command"
cmd parent child "Child command"
`
	engine, out := newTestEngine(t, dsl)

	res, err := engine.Run(context.Background(), []string{"parent", "unknown"})
	if err != nil {
		t.Fatalf("Expected nil error (help shown), got: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", res.ExitCode)
	}
	if !strings.Contains(out.String(), "child") {
		t.Errorf("expected help for parent, got:\n%s", out.String())
	}

	if _, err := engine.Run(context.Background(), []string{"nope"}); err == nil {
		t.Error("expected error for unknown top-level command")
	}
}

func TestEngineParams(t *testing.T) {
	dsl := `
flag verbose bool "Verbose" v
cmd fs "Filesystems"
cmd fs rename "Rename"
    arg id int "Id"
    arg name string "Name"
    flag force bool "Force" f
    flag note string "Note"
`
	engine, _ := newTestEngine(t, dsl)

	res := engine.Parse([]string{"-v", "fs", "rename", "3", "new", "-f", "--note", "hi"})
	if res.Error != nil {
		t.Fatalf("Parse: %v", res.Error)
	}
	inv := res.Invocation
	if inv.Global["verbose"] != true {
		t.Error("global flag not set")
	}
	if inv.Args["name"] != "new" || !inv.Bool("force") || inv.String("note") != "hi" {
		t.Errorf("unexpected invocation: %+v", inv)
	}
	if id, err := inv.ID("id"); err != nil || id != 3 {
		t.Errorf("ID = %d, %v", id, err)
	}

	cases := map[string][]string{
		"must be a number":    {"fs", "rename", "x", "new"},
		"unknown flag":        {"fs", "rename", "1", "a", "--bogus"},
		"unexpected argument": {"fs", "rename", "1", "a", "b"},
		"needs a value":       {"fs", "rename", "1", "a", "--note"},
	}
	for want, args := range cases {
		res := engine.Parse(args)
		if res.Error == nil || !strings.Contains(res.Error.Error(), want) {
			t.Errorf("%v: expected %q, got %v", args, want, res.Error)
		}
	}
}

func TestEngineResolve(t *testing.T) {
	dsl := `
cmd fs "Filesystems"
cmd fs import "Import"
cmd fs info "Info"
cmd disk "Disk"
cmd disk info "Info"
`
	engine, _ := newTestEngine(t, dsl)

	res := engine.Parse([]string{"f", "imp"})
	if res.Error != nil || getCmdPath(res.Invocation.Command) != "fs/import" {
		t.Errorf("prefix match failed: %+v", res)
	}
	res = engine.Parse([]string{"import"})
	if res.Error != nil || getCmdPath(res.Invocation.Command) != "fs/import" {
		t.Errorf("omitted parent failed: %+v", res)
	}
	res = engine.Parse([]string{"info"})
	if res.Error == nil || !strings.Contains(res.Error.Error(), "ambiguous") {
		t.Errorf("expected ambiguity, got %v", res.Error)
	}
}

func TestUnhandled(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultDSL)
	if len(engine.Unhandled()) == 0 {
		t.Fatal("expected unhandled commands before registration")
	}
	RegisterHandlers(engine, &DefaultHandlers{})
	if missing := engine.Unhandled(); len(missing) != 0 {
		t.Errorf("commands without handler: %v", missing)
	}
}

func TestHelpOutput(t *testing.T) {
	engine, out := newTestEngine(t, DefaultDSL)

	if _, err := engine.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Usage:", "--verbose", "import", "Topics"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("main help lacks %q", want)
		}
	}

	out.Reset()
	if _, err := engine.Run(context.Background(), []string{"help", "fs", "import"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ula fs import restored") {
		t.Errorf("command help lacks example:\n%s", out.String())
	}

	out.Reset()
	if _, err := engine.Run(context.Background(), []string{"help", "env"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ULA_LOG_LEVEL") {
		t.Errorf("topic help lacks text:\n%s", out.String())
	}
}
