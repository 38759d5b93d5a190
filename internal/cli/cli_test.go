// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/config"
	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple positional",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "flag with value",
			args:    []string{"deck-1", "--slides", "7"},
			wantSub: "deck-1",
			validate: func(t *testing.T, p *ArgParser) {
				n, err := p.FlagInt("slides")
				require.NoError(t, err)
				assert.Equal(t, 7, n)
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"deck-1", "--output=./out"},
			wantSub: "deck-1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "./out", p.Flag("output"))
			},
		},
		{
			name:    "explicit false",
			args:    []string{"deck-1", "--notes=false"},
			wantSub: "deck-1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.HasFlag("notes"))
				assert.False(t, p.BoolFlagOrDefault("notes", true))
			},
		},
		{
			name:    "declared bool keeps following positional",
			args:    []string{"--notes", "deck-1"},
			bools:   []string{"notes"},
			wantSub: "deck-1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("notes"))
				assert.Equal(t, 1, p.PositionalCount())
			},
		},
		{
			name:    "undeclared flag takes the next word",
			args:    []string{"--notes", "deck-1"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "deck-1", p.Flag("notes"))
			},
		},
		{
			name:    "negative number is a value",
			args:    []string{"stats", "--days", "-3"},
			wantSub: "stats",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "-3", p.Flag("days"))
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"a", "--", "--not-a-flag", "b"},
			wantSub: "a",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.HasFlag("not-a-flag"))
				assert.Equal(t, []string{"a", "--not-a-flag", "b"}, p.PositionalFrom(0))
			},
		},
		{
			name:    "trailing flag is boolean",
			args:    []string{"deck-1", "--diff"},
			wantSub: "deck-1",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("diff"))
			},
		},
		{
			name:    "short alias lookup",
			args:    []string{"--all", "-y"},
			bools:   []string{"all", "yes", "y"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("yes", "y"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			assert.Equal(t, tt.wantSub, p.Subcommand())
			assert.Equal(t, tt.args, p.Raw())
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	p := NewArgParser([]string{"--slides", "abc"})
	_, err := p.FlagIntOrDefault("slides", 5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slides", verr.Field)

	n, err := NewArgParser(nil).FlagIntOrDefault("slides", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestArgParser_OutOfRangePositional(t *testing.T) {
	p := NewArgParser([]string{"one"})
	assert.Equal(t, "", p.Positional(3))
	assert.Equal(t, "", p.Positional(-1))
	assert.Empty(t, p.PositionalFrom(2))
	assert.Equal(t, "one", JoinPositionalArgs(p, 0))
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
		args func(*testing.T, Args)
	}{
		{name: "empty is help", argv: nil, want: CmdHelp},
		{name: "alias", argv: []string{"gen", "Solar"}, want: CmdGenerate},
		{name: "case insensitive", argv: []string{"LIST"}, want: CmdList},
		{name: "version flag", argv: []string{"--version"}, want: CmdVersion},
		{name: "unknown", argv: []string{"frobnicate"}, want: CmdUnknown,
			args: func(t *testing.T, a Args) { assert.Equal(t, "frobnicate", a.Name) }},
		{
			name: "global flags anywhere",
			argv: []string{"--json", "show", "deck-1", "-q", "--offline", "--config=/tmp/k.toml"},
			want: CmdShow,
			args: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.True(t, a.Quiet)
				assert.True(t, a.Offline)
				assert.Equal(t, "/tmp/k.toml", a.ConfigPath)
				assert.Equal(t, "deck-1", a.Cmd.Positional(0))
			},
		},
		{
			name: "command bools",
			argv: []string{"show", "--notes", "deck-1"},
			want: CmdShow,
			args: func(t *testing.T, a Args) {
				assert.True(t, a.Cmd.BoolFlag("notes"))
				assert.Equal(t, "deck-1", a.Cmd.Positional(0))
			},
		},
		{
			name: "globals after double dash stay positional",
			argv: []string{"generate", "--", "--json"},
			want: CmdGenerate,
			args: func(t *testing.T, a Args) {
				assert.False(t, a.JSON)
				assert.Equal(t, "--json", a.Cmd.Positional(0))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			assert.Equal(t, tt.want, cmd)
			require.NotNil(t, args.Cmd)
			if tt.args != nil {
				tt.args(t, args)
			}
		})
	}
}

// =============================================================================
// ERROR MAPPING (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("slides", "x", "must be a number"), ExitUsageError},
		{"slide count", fmt.Errorf("%w (got 0)", deck.ErrInvalidSlideCount), ExitUsageError},
		{"layout", fmt.Errorf("parse: %w", model.ErrUnknownLayout), ExitUsageError},
		{"config", errConfig{errors.New("bad toml")}, ExitConfigError},
		{"not found", fmt.Errorf("load: %w", storage.ErrNotFound), ExitNotFoundError},
		{"slide not found", deck.ErrSlideNotFound, ExitNotFoundError},
		{"auth", cloud.ErrAuthFailed, ExitAuthError},
		{"unavailable", cloud.ErrUnavailable, ExitNetworkError},
		{"deadline", context.DeadlineExceeded, ExitNetworkError},
		{"cancelled", fmt.Errorf("run: %w", context.Canceled), ExitCancelled},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, errors.New("boom"), true)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "boom")
}

// =============================================================================
// SLIDE REFERENCES
// =============================================================================

func TestTerminalWidth_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, DefaultTerminalWidth, TerminalWidth(&buf))
	assert.Equal(t, colTitle, titleWidth(&buf, slideRowFixed))
	assert.Equal(t, colTitle, titleWidth(&buf, summaryRowFixed))
}

func TestPrintSummaries_TitleColumn(t *testing.T) {
	var buf bytes.Buffer
	printSummaries(&buf, []storage.Summary{{
		ID:         "0123456789abcdef0123456789abcdef0123",
		Title:      strings.Repeat("long title ", 10),
		SlideCount: 3,
	}})
	line := strings.TrimRight(buf.String(), "\n")
	assert.Contains(t, line, "  3 slides")
	assert.NotContains(t, line, strings.Repeat("long title ", 5))
}

func TestResolveSlide(t *testing.T) {
	p := &model.Presentation{Slides: []model.Slide{{ID: "s-a"}, {ID: "s-b"}, {ID: "s-c"}}}

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "s-b", want: "s-b"},
		{ref: "1", want: "s-a"},
		{ref: "3", want: "s-c"},
		{ref: "0", wantErr: deck.ErrSlideIndex},
		{ref: "4", wantErr: deck.ErrSlideIndex},
		{ref: "s-z", wantErr: deck.ErrSlideNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveSlide(p, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// END TO END
// =============================================================================

type deckJSON struct {
	Success bool `json:"success"`
	Data    struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Slides []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Layout string `json:"layout"`
		} `json:"slides"`
	} `json:"data"`
}

// isolate points HOME at a fresh directory and clears the environment
// overrides so every run starts from the defaults.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	for _, k := range []string{"API_KEY", "KPRESENT_API_KEY", "KPRESENT_PROVIDER", "KPRESENT_BASE_URL",
		"KPRESENT_MODE", "KPRESENT_SEED", "KPRESENT_STORAGE_DIR", "KPRESENT_ADDR", "KPRESENT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return home
}

func run(t *testing.T, stdin string, argv ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), argv, Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func generateDeck(t *testing.T, slides int, prompt string) deckJSON {
	t.Helper()
	code, out, stderr := run(t, "", "--offline", "--json", "generate", "--slides", fmt.Sprint(slides), prompt)
	require.Equal(t, ExitSuccess, code, stderr)
	var d deckJSON
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.True(t, d.Success)
	require.Len(t, d.Data.Slides, slides)
	return d
}

func TestRun_VersionJSON(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "version", "--json")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Success bool        `json:"success"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, Version, resp.Data.Version)
}

func TestRun_HelpAndUnknown(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "kpresent generate")

	code, _, stderr := run(t, "", "frobnicate")
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "frobnicate")
}

func TestRun_GenerateValidation(t *testing.T) {
	isolate(t)
	code, _, _ := run(t, "", "--offline", "generate")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = run(t, "", "--offline", "generate", "--slides", "0", "Solar")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = run(t, "", "--offline", "generate", "--theme", "no-such-theme", "Solar")
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_GenerateListShow(t *testing.T) {
	home := isolate(t)
	d := generateDeck(t, 3, "The future of solar energy")
	assert.NotEmpty(t, d.Data.ID)

	files, err := filepath.Glob(filepath.Join(home, ".kpresent", "presentations", "*"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)

	code, out, _ := run(t, "", "--offline", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, d.Data.ID)

	code, out, _ = run(t, "", "--offline", "--json", "list", "solar")
	require.Equal(t, ExitSuccess, code)
	var list struct {
		Data ListData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 1, list.Data.Count)
	assert.Equal(t, "solar", list.Data.Query)

	code, out, _ = run(t, "", "--offline", "show", "--notes", d.Data.ID)
	require.Equal(t, ExitSuccess, code)
	for _, s := range d.Data.Slides {
		assert.Contains(t, out, s.ID)
	}
}

func TestRun_GenerateProgressLines(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "", "--offline", "generate", "--slides", "2", "Ocean currents")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "[1/2]")
	assert.Contains(t, stderr, "[2/2]")
}

func TestRun_Plan(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "--json", "plan", "--slides", "4", "Ocean", "currents")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Data PlanData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Items, 4)
	for i, it := range resp.Data.Items {
		assert.Equal(t, i+1, it.Number)
		assert.True(t, it.Layout.Valid())
	}
}

func TestRun_Render(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "render", "title_content", "--title", "Key points", "--body", "Growth is steady")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Key points")

	code, _, _ = run(t, "", "render", "not_a_layout")
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_RegenerateAddDelete(t *testing.T) {
	isolate(t)
	d := generateDeck(t, 3, "Urban gardening")

	code, out, stderr := run(t, "", "--offline", "--json", "regenerate", d.Data.ID, "2", "--focus", "Rooftop beds")
	require.Equal(t, ExitSuccess, code, stderr)
	var regen struct {
		Data RegenerateData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &regen))
	assert.Equal(t, d.Data.Slides[1].ID, regen.Data.SlideID)
	assert.NotEmpty(t, regen.Data.Summary)

	code, _, _ = run(t, "", "--offline", "regenerate", d.Data.ID, "9")
	assert.Equal(t, ExitUsageError, code)

	code, _, stderr = run(t, "", "--offline", "add", d.Data.ID, "big_number", "--after", "1", "--focus", "Yield")
	require.Equal(t, ExitSuccess, code, stderr)

	code, out, _ = run(t, "", "--offline", "--json", "show", d.Data.ID)
	require.Equal(t, ExitSuccess, code)
	var shown deckJSON
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Len(t, shown.Data.Slides, 4)
	assert.Equal(t, "big_number", shown.Data.Slides[1].Layout)

	code, _, _ = run(t, "", "--offline", "delete", d.Data.ID, "1")
	require.Equal(t, ExitSuccess, code)

	code, _, _ = run(t, "", "--offline", "delete", d.Data.ID)
	require.Equal(t, ExitSuccess, code)

	code, _, _ = run(t, "", "--offline", "show", d.Data.ID)
	assert.Equal(t, ExitNotFoundError, code)
}

func TestRun_DeleteAllNeedsConfirmation(t *testing.T) {
	isolate(t)
	generateDeck(t, 1, "Tea")

	code, _, _ := run(t, "", "--offline", "delete", "--all")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = run(t, "", "--offline", "delete", "--all", "--yes")
	require.Equal(t, ExitSuccess, code)

	code, out, _ := run(t, "", "--offline", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No presentations stored.")
}

func TestRun_Export(t *testing.T) {
	isolate(t)
	d := generateDeck(t, 2, "Volcanoes")
	dir := t.TempDir()

	code, out, stderr := run(t, "", "--offline", "--json", "export", d.Data.ID, "markdown", "--output", dir)
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Data ExportData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "markdown", resp.Data.Format)
	assert.Equal(t, dir, filepath.Dir(resp.Data.Path))

	content, err := os.ReadFile(resp.Data.Path)
	require.NoError(t, err)
	assert.EqualValues(t, len(content), resp.Data.Bytes)
	assert.Contains(t, string(content), "## 1. ")
	assert.Contains(t, string(content), "## 2. ")

	code, out, _ = run(t, "", "--offline", "export", d.Data.ID, "json", "--stdout")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, json.Valid([]byte(out)))

	code, _, _ = run(t, "", "--offline", "export", d.Data.ID, "pptx")
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_RefineAndStats(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "--offline", "refine", "a", "lighthouse", "at", "dusk")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, strings.ToLower(out), "lighthouse")

	generateDeck(t, 2, "Bees")
	code, out, _ = run(t, "", "--offline", "stats")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Usage, last 7 days")

	code, _, _ = run(t, "", "--offline", "stats", "--days", "0")
	assert.Equal(t, ExitUsageError, code)
}

func TestRun_Config(t *testing.T) {
	home := isolate(t)

	code, _, stderr := run(t, "", "config", "set", "generation.default_slides", "8")
	require.Equal(t, ExitSuccess, code, stderr)
	_, err := os.Stat(filepath.Join(home, ".kpresent", "config.toml"))
	require.NoError(t, err)

	code, out, _ := run(t, "", "config", "get", "generation.default_slides")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "8", strings.TrimSpace(out))

	code, _, _ = run(t, "", "config", "set", "remote.api_key", "sk-secret")
	require.Equal(t, ExitSuccess, code)
	code, out, _ = run(t, "", "config", "get", "remote.api_key")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, config.Redacted, strings.TrimSpace(out))

	code, out, _ = run(t, "", "config", "keys")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "generation.default_slides")

	code, _, _ = run(t, "", "config", "set", "no.such.key", "1")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = run(t, "", "config", "init")
	assert.Equal(t, ExitUsageError, code)
	code, _, _ = run(t, "", "config", "init", "--force")
	assert.Equal(t, ExitSuccess, code)
}

func TestRun_BrokenExplicitConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("generation = ["), 0600))

	code, _, _ := run(t, "", "--config", path, "--offline", "list")
	assert.Equal(t, ExitConfigError, code)
}

// =============================================================================
// SHELL
// =============================================================================

func TestRun_ShellScript(t *testing.T) {
	isolate(t)
	script := strings.Join([]string{
		"# scripted session",
		"show",
		"new Solar power --slides 3",
		"move 3 1",
		"title 1 Opening",
		"transition 2 zoom_in",
		"bogus",
		"export markdown --output " + t.TempDir(),
		"exit",
		"list",
	}, "\n")

	code, out, stderr := run(t, script, "--offline", "shell")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, out, "no presentation open")
	assert.Contains(t, out, "Created")
	assert.Contains(t, out, "Moved to position 1")
	assert.Contains(t, out, "Updated title")
	assert.Contains(t, out, "Transition set to zoom_in")
	assert.Contains(t, out, "unknown shell command")
	assert.Contains(t, out, "Exported")
	assert.NotContains(t, out, "No presentations stored.")
}

func TestShell_Edits(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	var out bytes.Buffer
	app, err := NewApp(cfg, AppOptions{Streams: Streams{In: strings.NewReader(""), Out: &out, Err: &out}, Offline: true, Quiet: true})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	sh := NewShell(app)
	assert.Nil(t, sh.Current())

	require.NoError(t, sh.Exec(ctx, "new Deep sea creatures --slides 2"))
	require.NotNil(t, sh.Current())
	first := sh.Current().Slides[0].ID

	require.NoError(t, sh.Exec(ctx, "notes 1 Speak slowly"))
	assert.Equal(t, "Speak slowly", sh.Current().Slides[0].SpeakerNotes)

	require.NoError(t, sh.Exec(ctx, "activate 2"))
	assert.Equal(t, sh.Current().Slides[1].ID, sh.Current().ActiveSlideID)

	require.NoError(t, sh.Exec(ctx, "del "+first))
	require.Len(t, sh.Current().Slides, 1)

	var verr *ValidationError
	assert.ErrorAs(t, sh.Exec(ctx, "del 1"), &verr)
	assert.ErrorIs(t, sh.Exec(ctx, "move 9 1"), deck.ErrSlideIndex)
	assert.ErrorIs(t, sh.Exec(ctx, "exit"), errShellExit)

	store, err := app.Store()
	require.NoError(t, err)
	stored, err := store.Load(sh.Current().ID)
	require.NoError(t, err)
	assert.Len(t, stored.Slides, 1)
}
