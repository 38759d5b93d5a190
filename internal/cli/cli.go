// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for kpresent.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdGenerate
	CmdRender
	CmdPlan
	CmdThemes
	CmdList
	CmdShow
	CmdRegenerate
	CmdAdd
	CmdDelete
	CmdExport
	CmdRefine
	CmdStats
	CmdServe
	CmdShell
	CmdConfig
	CmdVersion
	CmdUnknown
)

var commandNames = map[string]Command{
	"generate":   CmdGenerate,
	"gen":        CmdGenerate,
	"g":          CmdGenerate,
	"render":     CmdRender,
	"plan":       CmdPlan,
	"themes":     CmdThemes,
	"list":       CmdList,
	"ls":         CmdList,
	"show":       CmdShow,
	"regenerate": CmdRegenerate,
	"regen":      CmdRegenerate,
	"add":        CmdAdd,
	"delete":     CmdDelete,
	"rm":         CmdDelete,
	"export":     CmdExport,
	"refine":     CmdRefine,
	"stats":      CmdStats,
	"serve":      CmdServe,
	"shell":      CmdShell,
	"config":     CmdConfig,
	"version":    CmdVersion,
	"-V":         CmdVersion,
	"--version":  CmdVersion,
	"help":       CmdHelp,
	"-h":         CmdHelp,
	"--help":     CmdHelp,
}

// commandBools lists each command's boolean flags so they never swallow a
// following positional.
var commandBools = map[Command][]string{
	CmdGenerate:   {"advanced", "no-progress", "notes"},
	CmdRender:     {"highlight"},
	CmdShow:       {"notes", "svg"},
	CmdRegenerate: {"diff"},
	CmdDelete:     {"all", "yes", "y"},
	CmdExport:     {"svg", "notes", "metadata", "stdout"},
	CmdRefine:     {"advanced"},
	CmdConfig:     {"show-secrets", "force"},
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config FILE
	JSON       bool   // Output in JSON format
	Quiet      bool
	Verbose    bool
	Offline    bool // Force local synthesis regardless of credentials
	NoColor    bool

	// Name is the command word as typed.
	Name string

	// Cmd parses the arguments after the command word.
	Cmd *ArgParser
}

const usageText = `kpresent - slide deck generator

Turns a short prompt into a themed presentation of vector slides. With an
API key configured, slide content comes from a remote model; without one,
every slide is synthesized locally from layout templates.

Usage:
  kpresent generate <prompt...>       Generate and store a presentation
    --slides N                        Number of slides (default 5)
    --mode normal|advanced            Generation mode (--advanced is short for advanced)
    --tone T --style S                Requested tone and style
    --theme ID                        Theme id (default: config or random)
    --no-progress                     Disable the progress display
  kpresent plan <prompt...>           Print the slide plan without generating
    --slides N
  kpresent render <layout>            Render one slide document to stdout
    --title T --body B --theme ID
    --highlight                       Syntax-highlight the document
  kpresent themes                     List registered themes
  kpresent list [query]               List stored presentations (newest first)
  kpresent show <id>                  Show a presentation
    --notes                           Render speaker notes
    --svg                             Print slide documents
  kpresent regenerate <id> <slide>    Regenerate one slide (slide id or 1-based number)
    --focus F                         New focus text
    --diff                            Print a unified diff of the change
  kpresent add <id> <layout>          Add a slide
    --after SLIDE --focus F
  kpresent delete <id> [slide]        Delete a presentation, or one slide
    --all --yes                       Delete every stored presentation
  kpresent export <id> <format>       Export to json, html or markdown
    --output DIR                      Output directory (default .)
    --stdout                          Write to stdout instead of a file
    --svg --notes=false --metadata=false
  kpresent refine <idea...>           Refine an image prompt idea
  kpresent stats [--days N]           Show generation usage
  kpresent serve                      Run the HTTP API
    --addr A --token T                Listen address and bearer token
  kpresent shell [id]                 Interactive editing shell
  kpresent config [show|get|set|keys|path|init]
  kpresent version

Global flags:
  --config FILE     Use FILE instead of ~/.kpresent/config.toml
  --json            Machine-readable output
  --offline         Never call the remote provider
  -q, --quiet       Only errors on stderr
  -v, --verbose     Debug logging
  --no-color        Disable colors

Environment:
  KPRESENT_API_KEY, API_KEY   Remote API key
  KPRESENT_PROVIDER           gemini, openrouter or none
  KPRESENT_MODE               Default generation mode
  KPRESENT_STORAGE_DIR        Presentation directory
  NO_COLOR                    Disable colors

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "kpresent version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse splits argv into global flags, the command and its arguments.
// An empty argv is help.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		args.Cmd = NewArgParser(nil)
		return CmdHelp, args
	}

	args.Name = remaining[0]
	cmd, ok := commandNames[strings.ToLower(remaining[0])]
	if !ok {
		cmd = CmdUnknown
	}
	args.Cmd = NewArgParser(remaining[1:], commandBools[cmd]...)
	return cmd, args
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags are only recognised before "--".
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--":
			return append(remaining, argv[i:]...), args
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--offline":
			args.Offline = true
		case "--no-color":
			args.NoColor = true
		case "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, args
}

// =============================================================================
// RUN
// =============================================================================

// Streams are the command's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Run parses argv, executes the command and returns the process exit code.
func Run(ctx context.Context, argv []string, streams Streams) int {
	cmd, args := Parse(argv)
	if args.NoColor {
		ForceColorsEnabled(false)
	}

	err := execute(ctx, cmd, args, streams)
	if err != nil {
		DisplayError(streams.Err, err, args.JSON)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func execute(ctx context.Context, cmd Command, args Args, s Streams) error {
	switch cmd {
	case CmdHelp:
		PrintUsage(s.Out)
		return nil
	case CmdVersion:
		return HandleVersion(s.Out, args)
	case CmdUnknown:
		return NewValidationErrorWithExample("command", args.Name, "unknown command", "kpresent help")
	case CmdConfig:
		return HandleConfig(s, args)
	}

	cfg, err := loadConfig(args, s.Err)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, AppOptions{
		Streams: s,
		Offline: args.Offline,
		Quiet:   args.Quiet,
		Verbose: args.Verbose,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case CmdGenerate:
		return app.HandleGenerate(ctx, args)
	case CmdRender:
		return app.HandleRender(args)
	case CmdPlan:
		return app.HandlePlan(args)
	case CmdThemes:
		return app.HandleThemes(args)
	case CmdList:
		return app.HandleList(args)
	case CmdShow:
		return app.HandleShow(args)
	case CmdRegenerate:
		return app.HandleRegenerate(ctx, args)
	case CmdAdd:
		return app.HandleAdd(ctx, args)
	case CmdDelete:
		return app.HandleDelete(args)
	case CmdExport:
		return app.HandleExport(args)
	case CmdRefine:
		return app.HandleRefine(ctx, args)
	case CmdStats:
		return app.HandleStats(args)
	case CmdServe:
		return app.HandleServe(ctx, args)
	case CmdShell:
		return app.HandleShell(ctx, args)
	}
	return fmt.Errorf("command %q is not wired", args.Name)
}

// HandleVersion prints version information, as JSON with --json.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}
