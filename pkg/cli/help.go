package cli

import (
	"fmt"
	"strings"
)

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Engine) PrintHelp(args ...string) {
	t := e.Theme
	if len(args) > 0 {
		for _, topic := range e.Topics {
			if topic.Name == args[0] || strings.HasPrefix(topic.Name, args[0]) {
				e.PrintTopicHelp(topic)
				return
			}
		}
		curr := e.Commands
		var found *Command
		for _, arg := range args {
			m, _ := match(curr, arg)
			if m == nil {
				break
			}
			found = m
			curr = m.Subs
		}
		if found != nil {
			e.PrintCommandHelp(found)
			return
		}
	}

	e.printf("%s\n", t.Styled(t.Title, "ula - Linux environments on your device"))
	e.printf("\n%s\n", t.Styled(t.Bold, "Usage:"))
	e.printf("  ula %s\n", t.Styled(t.Yellow, "[flags] <command>"))
	e.printf("\n%s\n", t.Styled(t.Bold, "Global Flags:"))
	e.printf("  %-14s %s\n", t.Styled(t.Cyan, "--help, -h"), t.Styled(t.Dim, "Show help [command | topic]"))
	for _, f := range e.GlobalFlags {
		short := ""
		if f.Short != "" {
			short = ", -" + f.Short
		}
		e.printf("  %-14s %s\n", t.Styled(t.Cyan, "--"+f.Name+short), t.Styled(t.Dim, f.Desc))
	}

	categories := []struct {
		name string
		icon string
	}{
		{"fs", t.IconFilesystem},
		{"session", t.IconSession},
		{"app", t.IconApp},
		{"device", t.IconDevice},
		{"disk", t.IconDisk},
	}
	shown := make(map[string]bool)
	e.printf("\n")
	for _, cat := range categories {
		for _, c := range e.Commands {
			if c.Name == cat.name {
				e.printCommandTree(c, "", true, cat.icon)
				e.printf("\n")
				shown[c.Name] = true
			}
		}
	}

	var misc []*Command
	for _, c := range e.Commands {
		if !shown[c.Name] && c.Name != "help" {
			misc = append(misc, c)
		}
	}
	if len(misc) > 0 {
		e.printf("%s %s\n", t.Bullet, t.Styled(t.Bold, "MISC"))
		for i, c := range misc {
			e.printCommandTree(c, "", i == len(misc)-1, "")
		}
		e.printf("\n")
	}
	if len(e.Topics) > 0 {
		e.printf("%s %s\n", t.IconHelp, t.Styled(t.Bold, "Topics:"))
		for _, topic := range e.Topics {
			e.printf("  %s %s %s\n", t.Styled(t.Cyan, topic.Name), e.getPadding(topic.Name, 20), t.Styled(t.Dim, topic.Desc))
		}
	}
	e.printf("\nType '%s' for more details.\n", t.Styled(t.Yellow, "ula help <command>"))
}

func (e *Engine) getPadding(name string, target int) string {
	dots := target - len(name)
	if dots < 2 {
		dots = 2
	}
	return e.Theme.Styled(e.Theme.Dim, strings.Repeat(".", dots))
}

func (e *Engine) printCommandTree(c *Command, indent string, isLast bool, icon string) {
	t := e.Theme
	prefix := t.BoxTree
	if isLast {
		prefix = t.BoxLast
	}
	namePart := indent + prefix + " "
	visualLen := len(indent) + 4
	if icon != "" {
		namePart += icon + " "
		visualLen += 3
	}
	namePart += t.Styled(t.Cyan, c.Name)
	visualLen += len(c.Name)

	padding := e.getPadding(strings.Repeat(" ", visualLen), 30)
	e.printf("%s %s %s\n", namePart, padding, t.Styled(t.Dim, c.Desc))

	newIndent := indent
	if isLast {
		newIndent += "    "
	} else {
		newIndent += t.BoxItem + " "
	}
	for i, s := range c.Subs {
		e.printCommandTree(s, newIndent, i == len(c.Subs)-1, "")
	}
}

func usageLine(c *Command) string {
	parts := []string{"ula", strings.ReplaceAll(getCmdPath(c), "/", " ")}
	if len(c.Subs) > 0 {
		parts = append(parts, "<command>")
	}
	for _, a := range c.Args {
		parts = append(parts, "<"+a.Name+">")
	}
	if len(c.Flags) > 0 {
		parts = append(parts, "[flags]")
	}
	return strings.Join(parts, " ")
}

func (e *Engine) PrintCommandHelp(c *Command) {
	t := e.Theme
	e.printf("\n%s %s\n", t.Styled(t.Bold, "Usage:"), t.Styled(t.Cyan, usageLine(c)))
	e.printf("%s %s\n\n", t.Styled(t.Bold, "Description:"), t.Styled(t.Dim, c.Desc))

	if len(c.Subs) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Subcommands:"))
		for i, s := range c.Subs {
			prefix := t.BoxTree
			if i == len(c.Subs)-1 {
				prefix = t.BoxLast
			}
			e.printf("  %s %-12s %s\n", prefix, t.Styled(t.Cyan, s.Name), t.Styled(t.Dim, s.Desc))
		}
		e.printf("\n")
	}
	if len(c.Args) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Arguments:"))
		for _, a := range c.Args {
			e.printf("  %-15s %s\n", t.Styled(t.Yellow, "<"+a.Name+">"), t.Styled(t.Dim, a.Desc))
		}
		e.printf("\n")
	}
	if len(c.Flags) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Flags:"))
		for _, f := range c.Flags {
			short := ""
			if f.Short != "" {
				short = ", -" + f.Short
			}
			e.printf("  %-15s %s\n", t.Styled(t.Cyan, "--"+f.Name+short), t.Styled(t.Dim, f.Desc))
		}
		e.printf("\n")
	}
	if len(c.Examples) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Examples:"))
		for _, ex := range c.Examples {
			e.printf("  %s %s\n", t.Styled(t.Green, "$"), ex)
		}
		e.printf("\n")
	}
}

func (e *Engine) PrintTopicHelp(topic *Topic) {
	t := e.Theme
	e.printf("\n%s %s\n", t.Styled(t.Bold, "Topic:"), t.Styled(t.Cyan, topic.Name))
	e.printf("%s %s\n\n", t.Styled(t.Bold, "Description:"), t.Styled(t.Dim, topic.Desc))
	e.printf("%s\n\n", topic.Text)
}
