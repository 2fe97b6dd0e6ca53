package cli

import (
	"strings"
	"testing"
)

func TestLexer(t *testing.T) {
	l := newLexer("cmd fs \"File systems\" # trailing\nflag dry-run bool \"x\" n\ntext \"\"\"\n    one\n      two\n\"\"\"\n")
	var got []string
	for tok := l.nextToken(); tok.kind != tokEOF; tok = l.nextToken() {
		if tok.kind == tokError {
			t.Fatalf("line %d: %s", tok.line, tok.value)
		}
		got = append(got, tok.value)
	}
	want := []string{"cmd", "fs", "File systems", "flag", "dry-run", "bool", "x", "n", "text", "  one\n  two"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{`"open`, "\"a\nb\"", `""" never closed`, `@`} {
		l := newLexer(input)
		tok := l.nextToken()
		if tok.kind != tokError {
			t.Errorf("%q: expected error token, got %v", input, tok)
		}
	}
}

func TestParser(t *testing.T) {
	dsl := `
flag verbose bool "Verbose" v
cmd fs "Filesystems"
cmd fs create "Create"
    arg name string "Name"
    flag arch string "Arch"
    flag user string "User" u
    example "ula fs create x"
topic env "Environment"
text """
    ULA_STATE_DIR
"""
`
	e, err := NewEngine(dsl)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.GlobalFlags) != 1 || e.GlobalFlags[0].Short != "v" {
		t.Errorf("global flags: %+v", e.GlobalFlags)
	}
	fs := e.Commands[0]
	create := fs.Subs[0]
	if create.Parent != fs || getCmdPath(create) != "fs/create" {
		t.Errorf("bad tree: %s", getCmdPath(create))
	}
	if len(create.Flags) != 2 || create.Flags[0].Short != "" || create.Flags[1].Short != "u" {
		t.Errorf("flags: %+v %+v", create.Flags[0], create.Flags[1])
	}
	if len(create.Examples) != 1 || len(e.Topics) != 1 || e.Topics[0].Text != "  ULA_STATE_DIR" {
		t.Errorf("examples %v topics %+v", create.Examples, e.Topics)
	}
}

func TestParserErrors(t *testing.T) {
	cases := []struct{ dsl, want string }{
		{dsl: `arg x string "x"`, want: "must follow"},
		{dsl: "cmd a \"a\"\nflag f int \"f\"", want: "unknown type"},
		{dsl: "cmd a \"a\"\narg x float \"x\"", want: "unknown type"},
		{dsl: `safe`, want: "unknown keyword"},
		{dsl: `text "t"`, want: "must follow a 'topic'"},
	}
	for _, tc := range cases {
		_, err := NewEngine(tc.dsl)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%q: expected %q, got %v", tc.dsl, tc.want, err)
		}
	}
}

func TestDefaultDSLParses(t *testing.T) {
	if _, err := NewEngine(DefaultDSL); err != nil {
		t.Fatal(err)
	}
}
