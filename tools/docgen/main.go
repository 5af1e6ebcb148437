// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen writes a man page and a tldr page for every visible exefit command
// and subcommand. Pages come from the command tree built by command.InitApp,
// so "fav add" and "cache purge" get pages of their own. When
// docs/commands/<page>.md exists it is the source for that page. Otherwise the
// markdown is built from the command's usage and flags.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/command"
)

func main() {
	var (
		repoRoot      string
		onlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	app, err := command.InitApp(context.Background(), []string{"exefit"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	n, err := generate(repoRoot, app, onlyIfChanged)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote docs for %d commands\n", n)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

// page is one documented command. Name is the file stem, e.g. "fav-add", and
// Path is how it is typed, e.g. "exefit fav add".
type page struct {
	Name string
	Path string
	Cmd  *cli.Command
}

// pages walks the tree depth first. Hidden commands and the built-in help
// command are skipped.
func pages(app *cli.Command) []page {
	var out []page
	var walk func(parents []string, cmds []*cli.Command)
	walk = func(parents []string, cmds []*cli.Command) {
		for _, c := range cmds {
			if c.Hidden || c.Name == "help" {
				continue
			}
			words := append(append([]string{}, parents...), c.Name)
			out = append(out, page{
				Name: strings.Join(words, "-"),
				Path: app.Name + " " + strings.Join(words, " "),
				Cmd:  c,
			})
			walk(words, c.Commands)
		}
	}
	walk(nil, app.Commands)
	return out
}

// generate writes both pages for every command under root and returns how
// many commands were documented.
func generate(root string, app *cli.Command, onlyIfChanged bool) (int, error) {
	commandsDir := filepath.Join(root, "docs", "commands")
	manOutDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(root, "docs", "tldr")

	for _, d := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	all := pages(app)
	if len(all) == 0 {
		return 0, errors.New("no commands to document")
	}

	for _, p := range all {
		md, err := os.ReadFile(filepath.Join(commandsDir, p.Name+".md"))
		if errors.Is(err, fs.ErrNotExist) {
			md = []byte(commandMarkdown(p))
		} else if err != nil {
			return 0, fmt.Errorf("reading docs for %s: %w", p.Path, err)
		}

		stem := app.Name + "-" + p.Name
		manPath := filepath.Join(manOutDir, stem+".1")
		if err := writeFileIfChanged(manPath, md2man.Render(md), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("writing man page for %s: %w", p.Path, err)
		}

		tldr := buildTLDR(stem, p.Path, shortDescription(string(md), p.Cmd), quickExamples(string(md)))
		tldrPath := filepath.Join(tldrOutDir, stem+".md")
		if err := writeFileIfChanged(tldrPath, []byte(tldr), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("writing tldr page for %s: %w", p.Path, err)
		}
	}

	return len(all), nil
}

// commandMarkdown renders a page from the command itself, in the same layout
// as the hand-written docs/commands pages.
func commandMarkdown(p page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Path)

	b.WriteString("Short description\n\n")
	if p.Cmd.Usage != "" {
		b.WriteString(sentence(p.Cmd.Usage) + "\n\n")
	} else {
		b.WriteString(p.Path + ".\n\n")
	}

	b.WriteString("Usage\n\n")
	usage := p.Cmd.UsageText
	if usage == "" {
		usage = p.Path + " [options]"
	}
	b.WriteString("```\n" + usage + "\n```\n\n")

	if len(p.Cmd.Commands) > 0 {
		b.WriteString("Subcommands\n\n")
		for _, c := range p.Cmd.Commands {
			if c.Hidden || c.Name == "help" {
				continue
			}
			fmt.Fprintf(&b, "- `%s %s`: %s\n", p.Path, c.Name, c.Usage)
		}
		b.WriteString("\n")
	}

	if flags := flagLines(p.Cmd.Flags); len(flags) > 0 {
		b.WriteString("Flags\n\n")
		for _, ln := range flags {
			b.WriteString(ln + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Flags and related docs\n\n")
	fmt.Fprintf(&b, "Run `%s --help` for the full flag list.\n", p.Path)
	return b.String()
}

func flagLines(flags []cli.Flag) []string {
	var out []string
	for _, f := range flags {
		if v, ok := f.(interface{ IsVisible() bool }); ok && !v.IsVisible() {
			continue
		}
		var names []string
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		ln := "- `" + strings.Join(names, ", ") + "`"
		if u, ok := f.(interface{ GetUsage() string }); ok && u.GetUsage() != "" {
			ln += ": " + u.GetUsage()
		}
		out = append(out, ln)
	}
	return out
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func writeFileIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		if err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)) {
			return nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

var sectionRe = regexp.MustCompile(`^(Short description|Usage|Subcommands|Flags|Quick examples|Flags and related docs)$`)

// section returns the lines between a section heading and the next one.
func section(md, name string) []string {
	var out []string
	in := false
	for _, ln := range strings.Split(md, "\n") {
		t := strings.TrimSpace(strings.TrimRight(ln, "\r"))
		if sectionRe.MatchString(t) || strings.HasPrefix(t, "#") && !in {
			if in {
				break
			}
			in = strings.EqualFold(t, name)
			continue
		}
		if in {
			out = append(out, strings.TrimRight(ln, "\r"))
		}
	}
	return out
}

// shortDescription is the first paragraph of "Short description", or the
// command's usage when the page has none.
func shortDescription(md string, cmd *cli.Command) string {
	var words []string
	for _, ln := range section(md, "Short description") {
		t := strings.TrimSpace(ln)
		if t == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, t)
	}
	if len(words) > 0 {
		return strings.Join(words, " ")
	}
	return sentence(cmd.Usage)
}

type example struct {
	Desc string
	Cmd  string
}

// quickExamples reads the fenced block under "Quick examples". A "# ..." line
// describes the command line that follows it.
func quickExamples(md string) []example {
	var exs []example
	var desc string
	fenced := false
	for _, ln := range section(md, "Quick examples") {
		t := strings.TrimSpace(ln)
		if strings.HasPrefix(t, "```") {
			if fenced {
				break
			}
			fenced = true
			continue
		}
		if !fenced || t == "" {
			continue
		}
		if strings.HasPrefix(t, "#") {
			desc = strings.TrimSpace(strings.TrimLeft(t, "#"))
			continue
		}
		if desc == "" {
			desc = "Example"
		}
		exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(t), " ")})
		desc = ""
	}
	return exs
}

func buildTLDR(stem, path, short string, exs []example) string {
	var b strings.Builder
	b.WriteString("# " + stem + "\n\n")
	if short == "" {
		short = path + "."
	}
	b.WriteString("> " + short + "\n")
	b.WriteString("> More information: https://github.com/staranto/exefitgo.\n\n")

	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: path + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + ex.Cmd + "`\n")
	}
	return b.String()
}
