package cli

import (
	"fmt"
)

// parser builds the command tree of an Engine from cli.def statements.
// Mutable
type parser struct {
	lex       *lexer
	tok       token
	engine    *Engine
	lastCmd   *Command
	lastTopic *Topic
}

func newParser(dsl string, engine *Engine) *parser {
	p := &parser{
		lex:    newLexer(dsl),
		engine: engine,
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.lex.nextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.tok.line, fmt.Sprintf(format, args...))
}

// expect consumes a token of the given kind and returns its value.
func (p *parser) expect(kind tokenKind, what string) (string, error) {
	if p.tok.kind == tokError {
		return "", p.errorf("%s", p.tok.value)
	}
	if p.tok.kind != kind {
		return "", p.errorf("expected %s, got %q", what, p.tok.value)
	}
	v := p.tok.value
	p.next()
	return v, nil
}

func (p *parser) parse() error {
	statements := map[string]func() error{
		"cmd":     p.parseCommand,
		"flag":    p.parseFlag,
		"arg":     p.parseArg,
		"example": p.parseExample,
		"topic":   p.parseTopic,
		"text":    p.parseText,
	}
	for p.tok.kind != tokEOF {
		keyword, err := p.expect(tokIdentifier, "keyword")
		if err != nil {
			return err
		}
		stmt, ok := statements[keyword]
		if !ok {
			return p.errorf("unknown keyword %q", keyword)
		}
		if err := stmt(); err != nil {
			return err
		}
	}
	return nil
}

// parseFlag reads: name type "desc" [short]. Flags before the first cmd
// are global.
func (p *parser) parseFlag() error {
	name, err := p.expect(tokIdentifier, "flag name")
	if err != nil {
		return err
	}
	typ, err := p.expect(tokIdentifier, "flag type")
	if err != nil {
		return err
	}
	descLine := p.tok.line
	desc, err := p.expect(tokString, "flag description")
	if err != nil {
		return err
	}
	if typ != "bool" && typ != "string" {
		return p.errorf("flag %s: unknown type %q", name, typ)
	}
	f := &Flag{Name: name, Type: typ, Desc: desc}

	// The short name must be on the same line as the description.
	if p.tok.kind == tokIdentifier && p.tok.line == descLine {
		f.Short = p.tok.value
		p.next()
	}

	if p.lastCmd == nil {
		p.engine.GlobalFlags = append(p.engine.GlobalFlags, f)
	} else {
		p.lastCmd.Flags = append(p.lastCmd.Flags, f)
	}
	return nil
}

// parseCommand reads: word... ["desc"]. Missing parents are created.
func (p *parser) parseCommand() error {
	var path []string
	for p.tok.kind == tokIdentifier {
		path = append(path, p.tok.value)
		p.next()
	}
	if len(path) == 0 {
		return p.errorf("expected command path")
	}
	desc := ""
	if p.tok.kind == tokString {
		desc = p.tok.value
		p.next()
	}

	list := &p.engine.Commands
	var current *Command
	for _, name := range path {
		next := findCommand(*list, name)
		if next == nil {
			next = &Command{Name: name, Parent: current}
			*list = append(*list, next)
		}
		current = next
		list = &current.Subs
	}
	if desc != "" {
		current.Desc = desc
	}
	p.lastCmd = current
	p.lastTopic = nil
	return nil
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (p *parser) parseArg() error {
	if p.lastCmd == nil {
		return p.errorf("'arg' must follow a 'cmd'")
	}
	name, err := p.expect(tokIdentifier, "arg name")
	if err != nil {
		return err
	}
	typ, err := p.expect(tokIdentifier, "arg type")
	if err != nil {
		return err
	}
	desc, err := p.expect(tokString, "arg description")
	if err != nil {
		return err
	}
	if typ != "string" && typ != "int" {
		return p.errorf("arg %s: unknown type %q", name, typ)
	}
	p.lastCmd.Args = append(p.lastCmd.Args, &Arg{Name: name, Type: typ, Desc: desc})
	return nil
}

func (p *parser) parseExample() error {
	if p.lastCmd == nil {
		return p.errorf("'example' must follow a 'cmd'")
	}
	ex, err := p.expect(tokString, "example string")
	if err != nil {
		return err
	}
	p.lastCmd.Examples = append(p.lastCmd.Examples, ex)
	return nil
}

func (p *parser) parseTopic() error {
	name, err := p.expect(tokIdentifier, "topic name")
	if err != nil {
		return err
	}
	desc, err := p.expect(tokString, "topic description")
	if err != nil {
		return err
	}
	t := &Topic{Name: name, Desc: desc}
	p.engine.Topics = append(p.engine.Topics, t)
	p.lastTopic = t
	p.lastCmd = nil
	return nil
}

func (p *parser) parseText() error {
	if p.lastTopic == nil {
		return p.errorf("'text' must follow a 'topic'")
	}
	text, err := p.expect(tokString, "text string")
	if err != nil {
		return err
	}
	p.lastTopic.Text = text
	return nil
}
