// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nhancris/KPresent/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTopic is used when the prompt is too short to name a topic.
	DefaultTopic = "AI Presentation"

	// minPromptLen is the prompt length a topic needs to exceed.
	minPromptLen = 5

	// maxTopicLen is the number of prompt characters considered for the topic.
	maxTopicLen = 60

	// ConclusionFocus is the focus of the closing slide.
	ConclusionFocus = "Thank You & Q&A"

	// sectionThreshold is the body size above which a section header is added.
	sectionThreshold = 3
)

// DefaultFocusTemplates are the body focus templates; %s is the topic.
var DefaultFocusTemplates = []string{
	"Key Aspect 1 of %s",
	"Benefits and Advantages of %s",
	"Challenges and Solutions for %s",
	"Real-world Application of %s",
	"Future Trends in %s",
	"Data Insights on %s",
	"A Compelling Statistic about %s",
	"A Quote related to %s",
}

// DefaultBodyLayouts are the layouts body slides cycle through.
var DefaultBodyLayouts = []model.LayoutKind{
	model.LayoutTitleContent,
	model.LayoutTwoContent,
	model.LayoutPictureWithCaption,
	model.LayoutBigNumber,
	model.LayoutQuote,
	model.LayoutContentWithCaption,
}

// =============================================================================
// PLANNER
// =============================================================================

// Planner holds the pools body slides are drawn from.
type Planner struct {
	FocusTemplates []string
	BodyLayouts    []model.LayoutKind
}

// Default returns a planner with the default pools.
func Default() *Planner {
	return &Planner{
		FocusTemplates: DefaultFocusTemplates,
		BodyLayouts:    DefaultBodyLayouts,
	}
}

// Plan returns the slide plan for a topic. A count below one yields an empty
// plan. The result can be longer than count when a section header is
// inserted, and is shorter by one when count is at least two (the
// conclusion slot).
func (p *Planner) Plan(topic string, count int) []model.SlidePlanItem {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []model.SlidePlanItem{{
			Layout: model.LayoutTitleSlide,
			Focus:  "Introduction to " + topic,
		}}
	}

	bodyCount := count - 2
	items := make([]model.SlidePlanItem, 0, count)
	items = append(items, model.SlidePlanItem{Layout: model.LayoutTitleSlide, Focus: topic})

	for i := 0; i < bodyCount; i++ {
		if i > 0 && bodyCount > sectionThreshold && i == bodyCount/2 {
			items = append(items, SectionHeader(topic))
		}
		items = append(items, model.SlidePlanItem{
			Layout: p.layout(i),
			Focus:  p.focus(i, topic),
		})
	}
	return items
}

func (p *Planner) focus(i int, topic string) string {
	templates := p.FocusTemplates
	if len(templates) == 0 {
		templates = DefaultFocusTemplates
	}
	tmpl := templates[i%len(templates)]
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, topic)
}

func (p *Planner) layout(i int) model.LayoutKind {
	layouts := p.BodyLayouts
	if len(layouts) == 0 {
		layouts = DefaultBodyLayouts
	}
	return layouts[i%len(layouts)]
}

// Plan plans with the default pools.
func Plan(topic string, count int) []model.SlidePlanItem {
	return Default().Plan(topic, count)
}

// =============================================================================
// EXTRA ITEMS
// =============================================================================

// SectionHeader is the mid-deck divider.
func SectionHeader(topic string) model.SlidePlanItem {
	return model.SlidePlanItem{Layout: model.LayoutSectionHeader, Focus: fmt.Sprintf("Exploring %s Further", topic)}
}

// Conclusion is the closing slide added by the assembler.
func Conclusion() model.SlidePlanItem {
	return model.SlidePlanItem{Layout: model.LayoutTitleOnly, Focus: ConclusionFocus}
}

// Filler pads a deck that is still short of the requested count.
func Filler(topic string) model.SlidePlanItem {
	return model.SlidePlanItem{Layout: model.LayoutContentWithCaption, Focus: "Additional detail on " + topic}
}

// =============================================================================
// TOPIC
// =============================================================================

// DeriveTopic turns a free-form prompt into the deck topic: the first 60
// characters, cut at the first comma and trimmed. Prompts of five characters
// or fewer get DefaultTopic.
func DeriveTopic(prompt string) string {
	if utf8.RuneCountInString(prompt) <= minPromptLen {
		return DefaultTopic
	}
	runes := []rune(prompt)
	if len(runes) > maxTopicLen {
		runes = runes[:maxTopicLen]
	}
	head, _, _ := strings.Cut(string(runes), ",")
	topic := strings.TrimSpace(head)
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
