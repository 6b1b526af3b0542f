package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/galsenai/french-wolof-translator/internal/hub"
)

// HubLister lists the models of a hub author.
type HubLister interface {
	ListModels(ctx context.Context, author string) ([]hub.Model, error)
}

// Lister handles listing available translation checkpoints.
type Lister struct {
	hub    HubLister
	server *openai.Client
	out    io.Writer
}

// NewLister creates a new model lister writing to out.
func NewLister(h HubLister, out io.Writer) *Lister {
	return &Lister{hub: h, out: out}
}

// WithInferenceServer also lists the models served at baseURL.
func (l *Lister) WithInferenceServer(baseURL, token string) *Lister {
	cfg := openai.DefaultConfig(token)
	cfg.BaseURL = baseURL
	l.server = openai.NewClientWithConfig(cfg)
	return l
}

// ListAvailableModels prints author's models, translation checkpoints
// first.
func (l *Lister) ListAvailableModels(ctx context.Context, author string) error {
	if author == "" {
		return fmt.Errorf("hub username not found. Set HUB_USERNAME in your .env file")
	}

	models, err := l.hub.ListModels(ctx, author)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	translationModels := []hub.Model{}
	otherModels := []hub.Model{}
	for _, m := range models {
		if isTranslationModel(m) {
			translationModels = append(translationModels, m)
		} else {
			otherModels = append(otherModels, m)
		}
	}
	sort.Slice(translationModels, func(i, j int) bool { return translationModels[i].ID < translationModels[j].ID })
	sort.Slice(otherModels, func(i, j int) bool { return otherModels[i].ID < otherModels[j].ID })

	fmt.Fprintf(l.out, "Models published by %s:\n", author)
	fmt.Fprintln(l.out, "\nTranslation checkpoints:")
	if len(translationModels) == 0 {
		fmt.Fprintln(l.out, "  No translation checkpoints found")
	}
	for _, m := range translationModels {
		fmt.Fprintf(l.out, "  %s (%d downloads)\n", m.ID, m.Downloads)
	}

	if len(otherModels) > 0 {
		fmt.Fprintln(l.out, "\nOther models:")
		for _, m := range otherModels {
			fmt.Fprintf(l.out, "  %s\n", m.ID)
		}
	}

	if l.server == nil {
		return nil
	}

	served, err := l.server.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list inference server models: %w", err)
	}
	ids := make([]string, 0, len(served.Models))
	for _, m := range served.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)

	fmt.Fprintln(l.out, "\nServed by the inference server:")
	if len(ids) == 0 {
		fmt.Fprintln(l.out, "  No models loaded")
	}
	for _, id := range ids {
		fmt.Fprintf(l.out, "  %s\n", id)
	}
	return nil
}

func isTranslationModel(m hub.Model) bool {
	switch m.PipelineTag {
	case "translation", "text2text-generation":
		return true
	}
	id := strings.ToLower(m.ID)
	return strings.Contains(id, "nllb") || strings.Contains(id, "wolof") || strings.Contains(id, "translat")
}
