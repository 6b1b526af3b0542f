package translation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/tokenize"
)

// ErrNotLocal is returned when publishing a checkpoint that was not
// loaded from a local directory.
var ErrNotLocal = errors.New("checkpoint is not a local directory")

// Publisher uploads model folders to a hub.
type Publisher interface {
	CreateRepo(ctx context.Context, repoID string, private bool) error
	UploadFolder(ctx context.Context, repoID, dir, message string) error
}

// PublisherFunc returns a Publisher authenticated with token.
type PublisherFunc func(token string) Publisher

// Config wires a Translator.
type Config struct {
	Model     config.ModelConfig
	Dataset   config.DatasetConfig
	Tokenizer tokenize.Tokenizer
	Generator Generator

	// ArtifactDir is the local checkpoint directory, empty for hub ids.
	ArtifactDir string
	NumBeams    int
	Publisher   PublisherFunc
	Logger      *zap.SugaredLogger
}

// Translator translates single sentences between French and Wolof.
type Translator struct {
	model       config.ModelConfig
	dataset     config.DatasetConfig
	tokenizer   tokenize.Tokenizer
	generator   Generator
	artifactDir string
	numBeams    int
	publisher   PublisherFunc
	logger      *zap.SugaredLogger
}

// NewTranslator creates a translator from cfg.
func NewTranslator(cfg Config) (*Translator, error) {
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.NumBeams < 1 {
		cfg.NumBeams = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Translator{
		model:       cfg.Model,
		dataset:     cfg.Dataset,
		tokenizer:   cfg.Tokenizer,
		generator:   cfg.Generator,
		artifactDir: cfg.ArtifactDir,
		numBeams:    cfg.NumBeams,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger,
	}, nil
}

// Translate translates text out of sourceLang ("fr" or "wo"). The tag is
// checked before anything is tokenized.
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	lang, err := ParseLanguage(sourceLang)
	if err != nil {
		return "", err
	}

	prompt := lang.Prefix(t.dataset) + text
	inputIDs, err := t.tokenizer.Encode(prompt, t.model.MaxLength)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize input: %w", err)
	}

	t.logger.Debugw("generating", "source", lang, "input_tokens", len(inputIDs))
	gen, err := t.generator.Generate(ctx, Request{
		Model:     t.model.Checkpoint,
		Prompt:    prompt,
		InputIDs:  inputIDs,
		MaxLength: t.model.MaxGenerationLength,
		NumBeams:  t.numBeams,
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	ids := gen.TokenIDs
	if ids == nil {
		if ids, err = t.tokenizer.Encode(gen.Text, 0); err != nil {
			return "", fmt.Errorf("failed to tokenize output: %w", err)
		}
	}
	if limit := t.model.MaxGenerationLength; limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	ids = tokenize.ReplaceLabelPadding(ids, t.tokenizer.PadTokenID())

	out, err := t.tokenizer.Decode(ids, true)
	if err != nil {
		return "", fmt.Errorf("failed to decode output: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// TranslateFrenchToWolof translates French text into Wolof.
func (t *Translator) TranslateFrenchToWolof(ctx context.Context, text string) (string, error) {
	return t.Translate(ctx, text, string(French))
}

// TranslateWolofToFrench translates Wolof text into French.
func (t *Translator) TranslateWolofToFrench(ctx context.Context, text string) (string, error) {
	return t.Translate(ctx, text, string(Wolof))
}

// IsLocal reports whether the checkpoint was loaded from disk.
func (t *Translator) IsLocal() bool {
	return t.artifactDir != ""
}

// Publish uploads the local checkpoint directory, model and tokenizer
// files, to the hub repository modelID.
func (t *Translator) Publish(ctx context.Context, modelID, token string) error {
	if !t.IsLocal() {
		return ErrNotLocal
	}
	if t.publisher == nil {
		return fmt.Errorf("no publisher configured")
	}
	if modelID == "" {
		return fmt.Errorf("model id is required")
	}
	if token == "" {
		return fmt.Errorf("a hub token is required to publish %s", modelID)
	}
	if _, err := os.Stat(filepath.Join(t.artifactDir, "config.json")); err != nil {
		return fmt.Errorf("%s does not look like a checkpoint: %w", t.artifactDir, err)
	}

	p := t.publisher(token)
	if err := p.CreateRepo(ctx, modelID, false); err != nil {
		return fmt.Errorf("failed to create %s: %w", modelID, err)
	}
	t.logger.Infow("uploading checkpoint", "dir", t.artifactDir, "repo", modelID)
	if err := p.UploadFolder(ctx, modelID, t.artifactDir, "Upload French-Wolof translation model"); err != nil {
		return fmt.Errorf("failed to upload %s: %w", modelID, err)
	}
	return nil
}

// SaveTranslation appends "source = translation" to translations.txt in dir.
func SaveTranslation(dir, source, translation string) error {
	outputFile := filepath.Join(dir, "translations.txt")
	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open translation file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s = %s\n", source, translation); err != nil {
		return fmt.Errorf("failed to write translation file: %w", err)
	}
	return nil
}

// TranslationCache stores translations in memory for batch operations.
type TranslationCache struct {
	translations map[string]string
}

// NewTranslationCache creates a new translation cache.
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

func cacheKey(lang Language, text string) string {
	return string(lang) + ":" + text
}

// Add records the translation of text out of lang.
func (tc *TranslationCache) Add(lang Language, text, translation string) {
	tc.translations[cacheKey(lang, text)] = translation
}

// Get retrieves a translation from the cache.
func (tc *TranslationCache) Get(lang Language, text string) (string, bool) {
	translation, ok := tc.translations[cacheKey(lang, text)]
	return translation, ok
}

// Len returns the number of cached translations.
func (tc *TranslationCache) Len() int {
	return len(tc.translations)
}
