// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/model"
)

// placeholderImagePrompt is returned for an empty idea.
const placeholderImagePrompt = "A beautiful, generic placeholder image that is abstract and visually appealing."

// RefineImagePrompt turns a short image idea into a detailed text-to-image
// prompt. Like Obtain it never fails; each degraded path returns a usable
// prompt.
func (o *Orchestrator) RefineImagePrompt(ctx context.Context, idea string, mode model.GenerationMode) string {
	if mode == "" {
		mode = model.ModeNormal
	}
	if o.client == nil {
		return fmt.Sprintf("Mock refined (%s): High-quality, professional image depicting %s, suitable for a presentation, clear visuals.", mode, idea)
	}
	if strings.TrimSpace(idea) == "" {
		return placeholderImagePrompt
	}

	text, err := o.client.Complete(ctx, cloud.Request{
		Model:  o.Model(mode),
		System: refineInstruction,
		Prompt: refineQuery(idea, mode),
	})
	if errors.Is(err, cloud.ErrEmptyResponse) {
		text, err = "", nil
	}
	if err != nil {
		o.logger.Warn("image prompt refinement failed", zap.String("mode", mode.String()), zap.Error(err))
		return fmt.Sprintf("Error refining prompt. Original idea: %s. Please ensure the image is high quality. (%s mode)", idea, mode)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("Detailed, professional quality image focusing on: %s. Clear background, good lighting. (%s mode)", idea, mode)
	}
	return strings.TrimSpace(text)
}
