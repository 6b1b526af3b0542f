package processor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/galsenai/french-wolof-translator/internal"
	"github.com/galsenai/french-wolof-translator/internal/batch"
	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/evaluate"
	"github.com/galsenai/french-wolof-translator/internal/models"
	"github.com/galsenai/french-wolof-translator/internal/translation"
)

// RunTranslate loads checkpoint and translates the demo sentences in both
// directions. With --publish the local checkpoint is uploaded afterwards.
func (p *Processor) RunTranslate(ctx context.Context, checkpoint string) error {
	p.printf("%s\n", p.messages.T("app_title", map[string]any{"Version": internal.Version}))
	p.printf("%s\n\n", p.messages.T("model_used", map[string]any{"Checkpoint": checkpoint}))

	tr, err := p.NewTranslator(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("failed to load translator: %w", err)
	}

	french := "Bonjour, comment allez-vous?"
	wolof, err := tr.TranslateFrenchToWolof(ctx, french)
	if err != nil {
		return err
	}
	p.printf("FR: %s\nWO: %s\n\n", french, wolof)

	wolofText := "Naka nga def?"
	frenchOut, err := tr.TranslateWolofToFrench(ctx, wolofText)
	if err != nil {
		return err
	}
	p.printf("WO: %s\nFR: %s\n\n", wolofText, frenchOut)

	generic, err := tr.Translate(ctx, "Merci beaucoup", string(translation.French))
	if err != nil {
		return err
	}
	p.printf("FR: %s\nWO: %s\n", "Merci beaucoup", generic)

	if !p.flags.Publish {
		return nil
	}
	return p.publish(ctx, tr)
}

func (p *Processor) publish(ctx context.Context, tr *translation.Translator) error {
	modelID, ok := p.env.HubModelID()
	if !ok {
		return fmt.Errorf("hub model id not configured. Set HUB_USERNAME in your .env file")
	}

	p.printf("\nPublishing %s...\n", modelID)
	err := tr.Publish(ctx, modelID, hfToken(p.env))
	if errors.Is(err, translation.ErrNotLocal) {
		return fmt.Errorf("only a local checkpoint directory can be published: %w", err)
	}
	if err != nil {
		return err
	}
	p.printf("✓ Model available at %s/%s\n", p.runtime.HubEndpoint, modelID)
	return nil
}

// ProcessBatch translates every entry of the batch file, appends the
// results to translations.txt in the output directory and reports BLEU for
// the entries carrying a reference.
func (p *Processor) ProcessBatch(ctx context.Context, checkpoint string) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile, p.flags.SourceLang)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tr, err := p.NewTranslator(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("failed to load translator: %w", err)
	}

	processedCount := 0
	cachedCount := 0
	errorCount := 0
	var hypotheses []string
	var references [][]string

	for i, entry := range entries {
		p.printf("\nTranslating %d/%d: %s\n", i+1, len(entries), entry.Text)

		lang, err := translation.ParseLanguage(entry.Source)
		if err != nil {
			p.printf("  Error: %v\n", err)
			errorCount++
			continue
		}

		result, ok := p.translationCache.Get(lang, entry.Text)
		if ok {
			cachedCount++
		} else {
			result, err = tr.Translate(ctx, entry.Text, entry.Source)
			if err != nil {
				p.logger.Errorw("translation failed", "text", entry.Text, "error", err)
				p.printf("  Error: %v\n", err)
				errorCount++
				continue
			}
			p.translationCache.Add(lang, entry.Text, result)
			processedCount++
		}
		p.printf("  %s → %s: %s\n", lang.Name(), lang.Target().Name(), result)

		if err := translation.SaveTranslation(p.flags.OutputDir, entry.Text, result); err != nil {
			return err
		}
		if entry.Reference != "" {
			hypotheses = append(hypotheses, result)
			references = append(references, []string{entry.Reference})
		}
	}

	p.printf("\n=== Batch Translation Summary ===\n")
	p.printf("Total sentences: %d\n", len(entries))
	p.printf("Translated: %d\n", processedCount)
	p.printf("Reused from cache: %d\n", cachedCount)
	if errorCount > 0 {
		p.printf("Errors: %d\n", errorCount)
	}
	if len(hypotheses) > 0 {
		p.printf("BLEU (%d references): %.2f\n", len(hypotheses), evaluate.CorpusBLEU(hypotheses, references))
	}
	p.printf("=================================\n")
	return nil
}

// ListModels prints the checkpoints published under HUB_USERNAME and,
// for an OpenAI-compatible server, the models it serves.
func (p *Processor) ListModels(ctx context.Context) error {
	lister := models.NewLister(p.hub, p.out)
	if p.runtime.InferenceProvider == config.ProviderOpenAI && p.runtime.InferenceEndpoint != "" {
		token := p.runtime.InferenceToken
		if token == "" {
			token = hfToken(p.env)
		}
		lister.WithInferenceServer(p.runtime.InferenceEndpoint, token)
	}

	author := ""
	if p.env != nil {
		author = p.env.HubUsername
	}
	return lister.ListAvailableModels(ctx, author)
}
