// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - Interactive editing shell over one presentation.
//
// Command: shell [id]
//
// Type "help" inside the shell for the command list. On a terminal the
// shell has line editing and history (~/.kpresent/shell_history).
// Piped input is read line by line, so edits can be scripted:
//
//	printf 'new Solar power slides 4\nmove 2 3\nexport markdown\n' | kpresent shell

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/nhancris/KPresent/internal/config"
	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/model"
)

// errShellExit ends the shell loop.
var errShellExit = errors.New("exit")

const shellHelp = `Commands:
  open <id>                     Open a stored presentation
  new <prompt...> [--slides N]  Generate and open a presentation
  list [query]                  List stored presentations
  show [--notes]                Show the open presentation
  regen <slide> [focus...]      Regenerate a slide
  add <layout> [--after S] [--focus F]
  del <slide>                   Delete a slide
  move <slide> <position>       Move a slide (1-based position)
  title <slide> <text...>       Set a slide title
  notes <slide> <text...>       Set speaker notes
  transition <slide> <name>     Set a slide transition
  activate <slide>              Make a slide active
  theme <id>                    Apply a theme
  themes                        List themes
  export <format> [--output DIR]
  help                          Show this help
  exit                          Leave the shell
Slides are referenced by id or 1-based number.`

// shellCommands is the completion list.
var shellCommands = []string{
	"open", "new", "list", "show", "regen", "add", "del", "move", "title",
	"notes", "transition", "activate", "theme", "themes", "export", "help", "exit", "quit",
}

// Shell is the editing state: the app and the open presentation.
type Shell struct {
	app *App
	p   *model.Presentation
}

// NewShell creates a shell with no presentation open.
func NewShell(app *App) *Shell {
	return &Shell{app: app}
}

// Current returns the open presentation, or nil.
func (sh *Shell) Current() *model.Presentation {
	return sh.p
}

// HandleShell runs the interactive shell.
func (a *App) HandleShell(ctx context.Context, args Args) error {
	sh := NewShell(a)
	if id := args.Cmd.Positional(0); id != "" {
		if err := sh.Exec(ctx, "open "+id); err != nil {
			return err
		}
	}

	if IsReaderTTY(a.Streams.In) {
		return sh.runLiner(ctx)
	}
	return sh.Run(ctx, a.Streams.In)
}

// Run executes one command per line of r until EOF or exit. Command errors
// are printed and do not stop the loop.
func (sh *Shell) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sh.execPrint(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

func (sh *Shell) runLiner(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(in string) []string {
		var out []string
		for _, c := range shellCommands {
			if strings.HasPrefix(c, strings.ToLower(in)) {
				out = append(out, c)
			}
		}
		return out
	})

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "shell_history")
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyFile == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(historyFile), 0700); err != nil {
			return
		}
		if f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(sh.app.Streams.Out, GetStyleForTTY(DimStyle).Render(`kpresent shell, type "help" for commands`))
	for {
		input, err := line.Prompt(sh.prompt())
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed terminal.
			fmt.Fprintln(sh.app.Streams.Out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if sh.execPrint(ctx, input) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (sh *Shell) prompt() string {
	if sh.p == nil {
		return "kpresent> "
	}
	return fmt.Sprintf("kpresent [%s]> ", truncateTitle(sh.p.Title, 24))
}

func truncateTitle(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

// execPrint runs one line and reports whether the shell should exit.
func (sh *Shell) execPrint(ctx context.Context, line string) bool {
	err := sh.Exec(ctx, line)
	if errors.Is(err, errShellExit) {
		return true
	}
	if err != nil {
		fmt.Fprintf(sh.app.Streams.Out, "%s %v\n", GetStyleForTTY(ErrorStyle).Render("[ERROR]"), err)
	}
	return false
}

// Exec runs one shell command line.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	a := sh.app
	out := a.Streams.Out

	switch cmd {
	case "exit", "quit":
		return errShellExit
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
		return nil
	case "list", "ls":
		return a.HandleList(Args{Cmd: NewArgParser(rest)})
	case "themes":
		return a.HandleThemes(Args{Cmd: NewArgParser(rest)})
	case "open":
		if len(rest) == 0 {
			return ErrMissingArgument("id", "open <id>")
		}
		store, err := a.Store()
		if err != nil {
			return err
		}
		p, err := store.Load(rest[0])
		if err != nil {
			return err
		}
		sh.p = p
		fmt.Fprintf(out, "Opened %s (%d slides)\n", p.Title, len(p.Slides))
		return nil
	case "new":
		args := Args{Cmd: NewArgParser(rest, commandBools[CmdGenerate]...)}
		args.Cmd.boolFlags["no-progress"] = true
		p, err := a.generateDeck(ctx, args)
		if err != nil {
			return err
		}
		sh.p = p
		fmt.Fprintf(out, "Created %s (%d slides) %s\n", p.Title, len(p.Slides), p.ID)
		return nil
	}

	// Everything below edits the open presentation.
	if sh.p == nil {
		return NewValidationErrorWithExample("presentation", "", "no presentation open", "open <id>")
	}
	switch cmd {
	case "show":
		parser := NewArgParser(rest, commandBools[CmdShow]...)
		printPresentation(out, sh.p, parser.BoolFlag("notes"), parser.BoolFlag("svg"))
		return nil
	case "regen":
		if len(rest) == 0 {
			return ErrMissingArgument("slide", "regen 2 [focus...]")
		}
		argv := []string{sh.p.ID, rest[0]}
		if len(rest) > 1 {
			argv = append(argv, "--focus", strings.Join(rest[1:], " "))
		}
		return sh.reloadAfter(a.HandleRegenerate(ctx, Args{Cmd: NewArgParser(argv, commandBools[CmdRegenerate]...)}))
	case "add":
		argv := append([]string{sh.p.ID}, rest...)
		return sh.reloadAfter(a.HandleAdd(ctx, Args{Cmd: NewArgParser(argv)}))
	case "export":
		argv := append([]string{sh.p.ID}, rest...)
		return a.HandleExport(Args{Cmd: NewArgParser(argv, commandBools[CmdExport]...)})
	case "del", "rm":
		if len(rest) == 0 {
			return ErrMissingArgument("slide", "del 2")
		}
		if len(sh.p.Slides) == 1 {
			return NewValidationError("slide", rest[0], "cannot delete the only slide")
		}
		return sh.reloadAfter(a.HandleDelete(Args{Cmd: NewArgParser([]string{sh.p.ID, rest[0]})}))
	case "move":
		if len(rest) < 2 {
			return ErrMissingArgument("slide and position", "move 2 4")
		}
		id, err := resolveSlide(sh.p, rest[0])
		if err != nil {
			return err
		}
		pos, err := strconv.Atoi(rest[1])
		if err != nil {
			return NewValidationError("position", rest[1], "must be a number")
		}
		return sh.apply(func(p *model.Presentation) (*model.Presentation, error) {
			return deck.MoveSlide(p, id, pos-1)
		}, fmt.Sprintf("Moved to position %d", pos))
	case "title", "notes":
		if len(rest) < 2 {
			return ErrMissingArgument("slide and text", cmd+" 2 <text...>")
		}
		id, err := resolveSlide(sh.p, rest[0])
		if err != nil {
			return err
		}
		text := strings.Join(rest[1:], " ")
		var patch deck.SlidePatch
		if cmd == "title" {
			patch.Title = &text
		} else {
			patch.SpeakerNotes = &text
		}
		return sh.apply(func(p *model.Presentation) (*model.Presentation, error) {
			return deck.UpdateSlide(p, id, patch)
		}, "Updated "+cmd)
	case "transition":
		if len(rest) < 2 {
			return ErrMissingArgument("slide and transition", "transition 2 zoom_in")
		}
		id, err := resolveSlide(sh.p, rest[0])
		if err != nil {
			return err
		}
		tr, err := model.ParseTransition(rest[1])
		if err != nil {
			return err
		}
		return sh.apply(func(p *model.Presentation) (*model.Presentation, error) {
			return deck.UpdateSlide(p, id, deck.SlidePatch{Transition: &tr})
		}, "Transition set to "+string(tr))
	case "activate":
		if len(rest) == 0 {
			return ErrMissingArgument("slide", "activate 2")
		}
		id, err := resolveSlide(sh.p, rest[0])
		if err != nil {
			return err
		}
		return sh.apply(func(p *model.Presentation) (*model.Presentation, error) {
			return deck.SetActive(p, id)
		}, "Active slide "+id)
	case "theme":
		if len(rest) == 0 {
			return ErrMissingArgument("theme", "theme "+sortedThemeIDs(a)[0])
		}
		t, err := a.Themes.Lookup(rest[0])
		if err != nil {
			return err
		}
		return sh.apply(func(p *model.Presentation) (*model.Presentation, error) {
			return deck.ApplyTheme(p, t), nil
		}, "Applied "+t.Name)
	}
	return NewValidationErrorWithExample("command", cmd, "unknown shell command", "help")
}

// apply runs an edit on the open presentation and saves it.
func (sh *Shell) apply(edit func(*model.Presentation) (*model.Presentation, error), msg string) error {
	out, err := edit(sh.p)
	if err != nil {
		return err
	}
	store, err := sh.app.Store()
	if err != nil {
		return err
	}
	if _, err := store.Save(out); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	sh.p = out
	fmt.Fprintln(sh.app.Streams.Out, msg)
	return nil
}

// reloadAfter refreshes the open presentation after a command saved it.
func (sh *Shell) reloadAfter(err error) error {
	if err != nil {
		return err
	}
	store, err := sh.app.Store()
	if err != nil {
		return err
	}
	p, err := store.Load(sh.p.ID)
	if err != nil {
		return err
	}
	sh.p = p
	return nil
}

func sortedThemeIDs(a *App) []string {
	var ids []string
	for _, t := range a.Themes.All() {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}
