// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Presentation commands: generate, plan, render, themes,
// list, show, regenerate, add, delete, export, refine and stats.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/diff"
	"github.com/nhancris/KPresent/internal/export"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/plan"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/ui/progress"
)

// =============================================================================
// GENERATE
// =============================================================================

// HandleGenerate assembles a presentation from a prompt and stores it.
func (a *App) HandleGenerate(ctx context.Context, args Args) error {
	p, err := a.generateDeck(ctx, args)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("generate", p).Print(a.Streams.Out)
	}
	printPresentation(a.Streams.Out, p, args.Cmd.BoolFlag("notes"), false)
	fmt.Fprintf(a.Streams.Out, "\n%s %s\n", GetStyleForTTY(SuccessStyle).Render("Saved"), p.ID)
	return nil
}

// generateDeck validates the generate arguments, assembles and saves.
func (a *App) generateDeck(ctx context.Context, args Args) (*model.Presentation, error) {
	prompt := strings.TrimSpace(JoinPositionalArgs(args.Cmd, 0))
	if prompt == "" {
		return nil, ErrMissingArgument("prompt", `kpresent generate "The future of solar energy" --slides 6`)
	}
	count, err := args.Cmd.FlagIntOrDefault("slides", a.Config.Generation.DefaultSlides)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w (got %d)", deck.ErrInvalidSlideCount, count)
	}
	mode, err := a.modeFlag(args.Cmd)
	if err != nil {
		return nil, err
	}

	req := deck.Request{
		Prompt:  prompt,
		Count:   count,
		Mode:    mode,
		Tone:    args.Cmd.Flag("tone"),
		Style:   args.Cmd.Flag("style"),
		ThemeID: args.Cmd.Flag("theme"),
	}
	if req.ThemeID != "" {
		if _, err := a.Themes.Lookup(req.ThemeID); err != nil {
			return nil, err
		}
	}

	store, err := a.Store()
	if err != nil {
		return nil, err
	}

	p, err := a.assemble(ctx, args, req)
	if err != nil {
		return nil, err
	}
	if _, err := store.Save(p); err != nil {
		return nil, fmt.Errorf("save presentation: %w", err)
	}
	return p, nil
}

// assemble runs the assembler behind the progress display on a terminal,
// or with one progress line per slide on stderr otherwise.
func (a *App) assemble(ctx context.Context, args Args, req deck.Request) (*model.Presentation, error) {
	interactive := !args.JSON && !args.Quiet && !args.Cmd.BoolFlag("no-progress") && IsWriterTTY(a.Streams.Out)
	if !interactive {
		if !args.JSON && !args.Quiet && !args.Cmd.BoolFlag("no-progress") {
			req.OnProgress = func(ev deck.Event) {
				fmt.Fprintf(a.Streams.Err, "  [%d/%d] %s %s\n", ev.Index+1, ev.Total, ev.Slide.Title, sourceTag(ev.Source))
			}
		}
		return a.Asm.Assemble(ctx, req)
	}

	var in io.Reader
	if IsReaderTTY(a.Streams.In) {
		in = a.Streams.In
	}
	title := "Generating " + plan.DeriveTopic(req.Prompt)

	var p *model.Presentation
	err := progress.Run(ctx, in, a.Streams.Out, title, req.Count, func(ctx context.Context, report progress.Reporter) error {
		req.OnProgress = func(ev deck.Event) {
			report(progress.SlideMsg{Index: ev.Index, Total: ev.Total, Title: ev.Slide.Title, Source: ev.Source})
		}
		var err error
		p, err = a.Asm.Assemble(ctx, req)
		return err
	})
	if errors.Is(err, progress.ErrCancelled) {
		return nil, fmt.Errorf("%w: %w", progress.ErrCancelled, context.Canceled)
	}
	return p, err
}

// modeFlag reads --advanced or --mode, falling back to the configured mode.
func (a *App) modeFlag(p *ArgParser) (model.GenerationMode, error) {
	if p.BoolFlag("advanced") {
		return model.ModeAdvanced, nil
	}
	if v := p.Flag("mode"); v != "" {
		return model.ParseMode(v)
	}
	return a.DefaultMode(), nil
}

// =============================================================================
// PLAN / RENDER / THEMES
// =============================================================================

// HandlePlan prints the slide plan for a prompt without generating.
func (a *App) HandlePlan(args Args) error {
	prompt := strings.TrimSpace(JoinPositionalArgs(args.Cmd, 0))
	if prompt == "" {
		return ErrMissingArgument("prompt", `kpresent plan "Ocean currents" --slides 7`)
	}
	count, err := args.Cmd.FlagIntOrDefault("slides", a.Config.Generation.DefaultSlides)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("%w (got %d)", deck.ErrInvalidSlideCount, count)
	}

	topic := plan.DeriveTopic(prompt)
	// Same shape as the assembled deck: truncate, then conclusion, then filler.
	items := plan.Plan(topic, count)
	if len(items) > count {
		items = items[:count]
	}
	if count > 1 && len(items) < count {
		items = append(items, plan.Conclusion())
	}
	for len(items) < count {
		items = append(items, plan.Filler(topic))
	}
	data := PlanData{Topic: topic, Items: make([]PlanRecord, 0, len(items))}
	for i, it := range items {
		data.Items = append(data.Items, PlanRecord{Number: i + 1, Layout: it.Layout, Focus: it.Focus})
	}

	if args.JSON {
		return NewJSONResponse("plan", data).Print(a.Streams.Out)
	}
	fmt.Fprintln(a.Streams.Out, GetStyleForTTY(TitleStyle).Render("Plan: "+topic))
	for _, r := range data.Items {
		fmt.Fprintf(a.Streams.Out, "%3d. %-16s %s\n", r.Number, r.Layout, r.Focus)
	}
	return nil
}

// HandleRender prints one locally rendered slide document.
func (a *App) HandleRender(args Args) error {
	name := args.Cmd.Positional(0)
	if name == "" {
		return ErrMissingArgument("layout", `kpresent render title_content --title "Key points" --body "Growth is steady"`)
	}
	kind, err := model.ParseLayout(name)
	if err != nil {
		return err
	}
	t, err := a.themeFlag(args.Cmd)
	if err != nil {
		return err
	}
	title := args.Cmd.FlagOrDefault("title", strings.ReplaceAll(kind.String(), "_", " "))
	doc := a.Orch.Render(kind, title, args.Cmd.Flag("body"), t)

	if args.JSON {
		return NewJSONResponse("render", map[string]string{
			"layout": kind.String(),
			"theme":  t.ID,
			"svg":    doc,
		}).Print(a.Streams.Out)
	}
	if args.Cmd.BoolFlag("highlight") {
		doc = highlight(doc)
	}
	fmt.Fprintln(a.Streams.Out, doc)
	return nil
}

// themeFlag resolves --theme, the configured default or the first theme.
func (a *App) themeFlag(p *ArgParser) (model.Theme, error) {
	id := p.FlagOrDefault("theme", a.Config.Theme.Default)
	if id != "" {
		return a.Themes.Lookup(id)
	}
	return a.Themes.All()[0], nil
}

// HandleThemes lists registered themes.
func (a *App) HandleThemes(args Args) error {
	themes := a.Themes.All()
	if args.JSON {
		return NewJSONResponse("themes", themes).Print(a.Streams.Out)
	}
	for _, t := range themes {
		fmt.Fprintf(a.Streams.Out, "%-16s %-18s %s on %s  %s\n",
			t.ID, t.Name, t.Colors.Primary, t.Colors.Background, t.DefaultTransition)
	}
	return nil
}

// =============================================================================
// STORED PRESENTATIONS
// =============================================================================

// HandleList lists stored presentations, filtered by an optional query.
func (a *App) HandleList(args Args) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	query := strings.TrimSpace(JoinPositionalArgs(args.Cmd, 0))
	list, err := store.List()
	if query != "" {
		list, err = store.Search(query)
	}
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("list", ListData{Presentations: list, Count: len(list), Query: query}).Print(a.Streams.Out)
	}
	printSummaries(a.Streams.Out, list)
	return nil
}

// HandleShow prints one presentation.
func (a *App) HandleShow(args Args) error {
	p, err := a.loadArg(args, `kpresent show <id> --notes`)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("show", p).Print(a.Streams.Out)
	}
	printPresentation(a.Streams.Out, p, args.Cmd.BoolFlag("notes"), args.Cmd.BoolFlag("svg"))
	return nil
}

// loadArg loads the presentation named by the first positional.
func (a *App) loadArg(args Args, usage string) (*model.Presentation, error) {
	id := args.Cmd.Positional(0)
	if id == "" {
		return nil, ErrMissingArgument("id", usage)
	}
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return store.Load(id)
}

// resolveSlide accepts a slide id or a 1-based slide number.
func resolveSlide(p *model.Presentation, ref string) (string, error) {
	if p.SlideIndex(ref) >= 0 {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(p.Slides) {
			return p.Slides[n-1].ID, nil
		}
		return "", fmt.Errorf("%w: %d (deck has %d slides)", deck.ErrSlideIndex, n, len(p.Slides))
	}
	return "", fmt.Errorf("%w: %s", deck.ErrSlideNotFound, ref)
}

// HandleRegenerate regenerates one slide and stores the result.
func (a *App) HandleRegenerate(ctx context.Context, args Args) error {
	const usage = `kpresent regenerate <id> 2 --focus "Market risks"`
	p, err := a.loadArg(args, usage)
	if err != nil {
		return err
	}
	ref := args.Cmd.Positional(1)
	if ref == "" {
		return ErrMissingArgument("slide", usage)
	}
	slideID, err := resolveSlide(p, ref)
	if err != nil {
		return err
	}
	before := p.Slides[p.SlideIndex(slideID)]

	out, err := a.Asm.RegenerateSlide(ctx, p, slideID, args.Cmd.Flag("focus"))
	if err != nil {
		return err
	}
	store, _ := a.Store()
	if _, err := store.Save(out); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}

	sd := diff.CompareSlides(before, out.Slides[out.SlideIndex(slideID)])
	data := RegenerateData{Presentation: out, SlideID: slideID, Summary: sd.Summary()}
	if args.Cmd.BoolFlag("diff") {
		data.Diff = sd.Format()
	}
	if args.JSON {
		return NewJSONResponse("regenerate", data).Print(a.Streams.Out)
	}
	fmt.Fprintf(a.Streams.Out, "%s slide %d: %s\n",
		GetStyleForTTY(SuccessStyle).Render("Regenerated"), out.SlideIndex(slideID)+1, data.Summary)
	if data.Diff != "" {
		fmt.Fprint(a.Streams.Out, data.Diff)
	}
	return nil
}

// HandleAdd generates a new slide into a stored presentation.
func (a *App) HandleAdd(ctx context.Context, args Args) error {
	const usage = `kpresent add <id> big_number --after 2 --focus "Revenue"`
	p, err := a.loadArg(args, usage)
	if err != nil {
		return err
	}
	name := args.Cmd.Positional(1)
	if name == "" {
		return ErrMissingArgument("layout", usage)
	}
	kind, err := model.ParseLayout(name)
	if err != nil {
		return err
	}
	after := ""
	if ref := args.Cmd.Flag("after"); ref != "" {
		if after, err = resolveSlide(p, ref); err != nil {
			return err
		}
	}

	out, err := a.Asm.AddSlide(ctx, p, after, kind, args.Cmd.Flag("focus"))
	if err != nil {
		return err
	}
	store, _ := a.Store()
	if _, err := store.Save(out); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	if args.JSON {
		return NewJSONResponse("add", out).Print(a.Streams.Out)
	}
	s := out.ActiveSlide()
	fmt.Fprintf(a.Streams.Out, "%s slide %d: %s (%s)\n",
		GetStyleForTTY(SuccessStyle).Render("Added"), out.SlideIndex(s.ID)+1, s.Title, s.ID)
	return nil
}

// HandleDelete removes a presentation, one of its slides, or everything.
func (a *App) HandleDelete(args Args) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	if args.Cmd.BoolFlag("all") {
		if !args.Cmd.BoolFlag("yes", "y") {
			return NewValidationErrorWithExample("confirmation", "", "--all deletes every presentation", "kpresent delete --all --yes")
		}
		if err := store.Clear(); err != nil {
			return err
		}
		return a.deleted(args, DeleteData{All: true}, "Deleted all presentations")
	}

	const usage = "kpresent delete <id> [slide]"
	p, err := a.loadArg(args, usage)
	if err != nil {
		return err
	}
	ref := args.Cmd.Positional(1)
	if ref == "" {
		if err := store.Delete(p.ID); err != nil {
			return err
		}
		return a.deleted(args, DeleteData{ID: p.ID}, "Deleted "+p.ID)
	}

	slideID, err := resolveSlide(p, ref)
	if err != nil {
		return err
	}
	out, err := deck.DeleteSlide(p, slideID)
	if err != nil {
		return err
	}
	if _, err := store.Save(out); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	return a.deleted(args, DeleteData{ID: p.ID, SlideID: slideID}, "Deleted slide "+slideID)
}

func (a *App) deleted(args Args, data DeleteData, msg string) error {
	if args.JSON {
		return NewJSONResponse("delete", data).Print(a.Streams.Out)
	}
	fmt.Fprintln(a.Streams.Out, GetStyleForTTY(SuccessStyle).Render(msg))
	return nil
}

// HandleExport writes a presentation in an export format.
func (a *App) HandleExport(args Args) error {
	const usage = "kpresent export <id> markdown --output ./out"
	p, err := a.loadArg(args, usage)
	if err != nil {
		return err
	}
	format := args.Cmd.Positional(1)
	if format == "" {
		return ErrMissingArgument("format", usage)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = args.Cmd.FlagOrDefault("output", opts.OutputDir)
	opts.IncludeNotes = args.Cmd.BoolFlagOrDefault("notes", opts.IncludeNotes)
	opts.IncludeMetadata = args.Cmd.BoolFlagOrDefault("metadata", opts.IncludeMetadata)
	opts.IncludeSVG = args.Cmd.BoolFlag("svg")

	exporter, err := export.New(format, opts)
	if err != nil {
		return err
	}

	if args.Cmd.BoolFlag("stdout") {
		data, err := exporter.Export(p)
		if err != nil {
			return err
		}
		_, err = a.Streams.Out.Write(data)
		return err
	}

	path, err := export.ExportToFile(p, exporter, opts)
	if err != nil {
		return err
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	if args.JSON {
		return NewJSONResponse("export", ExportData{Path: path, Format: strings.ToLower(format), Bytes: size}).Print(a.Streams.Out)
	}
	fmt.Fprintf(a.Streams.Out, "%s %s (%s)\n", GetStyleForTTY(SuccessStyle).Render("Exported"), path, formatBytes(size))
	return nil
}

// =============================================================================
// REFINE / STATS
// =============================================================================

// HandleRefine expands an image idea into a text-to-image prompt.
func (a *App) HandleRefine(ctx context.Context, args Args) error {
	idea := strings.TrimSpace(JoinPositionalArgs(args.Cmd, 0))
	mode, err := a.modeFlag(args.Cmd)
	if err != nil {
		return err
	}
	prompt := a.Orch.RefineImagePrompt(ctx, idea, mode)
	if args.JSON {
		return NewJSONResponse("refine", RefineData{Idea: idea, Prompt: prompt}).Print(a.Streams.Out)
	}
	fmt.Fprintln(a.Streams.Out, prompt)
	return nil
}

// HandleStats prints slide generation usage over the last days.
func (a *App) HandleStats(args Args) error {
	if a.Usage == nil {
		return errors.New("usage tracking is unavailable")
	}
	days, err := args.Cmd.FlagIntOrDefault("days", 7)
	if err != nil {
		return err
	}
	if days < 1 {
		return NewValidationErrorWithExample("days", strconv.Itoa(days), "must be at least 1", "kpresent stats --days 30")
	}
	trends := a.Usage.Trends(days)
	if args.JSON {
		return NewJSONResponse("stats", trends).Print(a.Streams.Out)
	}

	w := a.Streams.Out
	fmt.Fprintln(w, GetStyleForTTY(TitleStyle).Render(fmt.Sprintf("Usage, last %d days", days)))
	fmt.Fprintln(w, RenderSeparator(40))
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Decks"), trends.Decks)
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Slides"), trends.Slides)
	sources := make([]string, 0, len(trends.SourceTotals))
	for src := range trends.SourceTotals {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Fprintf(w, "%s%d\n", RenderLabel("  "+src), trends.SourceTotals[src])
	}
	if n := trends.SourceTotals[telemetry.SourceFallback]; n > 0 && trends.Slides > 0 {
		fmt.Fprintln(w, GetStyleForTTY(WarningStyle).Render(
			fmt.Sprintf("%.0f%% of slides fell back to local synthesis", 100*float64(n)/float64(trends.Slides))))
	}
	var slideTime time.Duration
	for _, sess := range a.Usage.History(time.Now().AddDate(0, 0, -days), time.Now()) {
		slideTime += sess.SlideTime
	}
	if slideTime > 0 {
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Slide time"), formatDurationShort(slideTime))
	}
	for _, d := range trends.DailyBreakdown {
		fmt.Fprintf(w, "  %s  %3d decks %4d slides\n", d.Date.Format("2006-01-02"), d.Decks, d.Slides)
	}
	return nil
}
