package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/galsenai/french-wolof-translator/internal"
	"github.com/galsenai/french-wolof-translator/internal/cli"
	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/env"
	"github.com/galsenai/french-wolof-translator/internal/hub"
	"github.com/galsenai/french-wolof-translator/internal/i18n"
	"github.com/galsenai/french-wolof-translator/internal/tokenize"
	"github.com/galsenai/french-wolof-translator/internal/tracking"
	"github.com/galsenai/french-wolof-translator/internal/train"
	"github.com/galsenai/french-wolof-translator/internal/translation"
)

// Deps are the collaborators of a Processor. Nil factories select the
// production implementations.
type Deps struct {
	Env     *env.Environment
	Runtime config.Runtime
	Logger  *zap.SugaredLogger
	In      io.Reader
	Out     io.Writer

	NewTokenizer func(ctx context.Context, checkpoint string) (tokenize.Tokenizer, error)
	NewGenerator func(checkpoint string) (translation.Generator, error)
	Backend      train.Backend
	Tracker      tracking.Tracker
	LookPath     func(string) (string, error)
}

// Processor runs the frwolof commands.
type Processor struct {
	flags            *cli.Flags
	env              *env.Environment
	config           *config.Set
	runtime          config.Runtime
	logger           *zap.SugaredLogger
	out              io.Writer
	prompter         *cli.StdinPrompter
	messages         *i18n.Localizer
	hub              *hub.Client
	translationCache *translation.TranslationCache
	deps             Deps
}

// NewProcessor loads the settings file and the process environment and
// creates a processor reading stdin and writing stdout.
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	if err := env.LoadDotEnv(flags.EnvFile); err != nil {
		return nil, err
	}
	e, err := env.Load(env.OSSource{})
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(e.LogLevel)
	if err != nil {
		return nil, err
	}

	return New(flags, Deps{
		Env:     e,
		Runtime: cli.GetRuntime(),
		Logger:  logger,
		In:      os.Stdin,
		Out:     os.Stdout,
	})
}

// New creates a processor from explicit dependencies.
func New(flags *cli.Flags, deps Deps) (*Processor, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	msgs, err := i18n.NewTranslator(i18n.DefaultLocale)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		flags:            flags,
		env:              deps.Env,
		config:           config.Load(deps.Env),
		runtime:          deps.Runtime,
		logger:           deps.Logger,
		out:              deps.Out,
		prompter:         cli.NewStdinPrompter(deps.In, deps.Out),
		messages:         msgs.For(flags.Locale),
		hub:              hub.NewClient(deps.Runtime.HubEndpoint, hfToken(deps.Env)),
		translationCache: translation.NewTranslationCache(),
		deps:             deps,
	}
	return p, nil
}

func hfToken(e *env.Environment) string {
	if e == nil {
		return ""
	}
	return e.HFToken
}

func (p *Processor) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Processor) cacheDir() string {
	if p.runtime.CacheDir != "" {
		return p.runtime.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "frwolof")
	}
	return filepath.Join(os.TempDir(), "frwolof")
}

// localCheckpoint reports whether checkpoint names a local directory.
func localCheckpoint(checkpoint string) bool {
	info, err := os.Stat(checkpoint)
	return err == nil && info.IsDir()
}

func (p *Processor) loadTokenizer(ctx context.Context, checkpoint string) (tokenize.Tokenizer, error) {
	if p.deps.NewTokenizer != nil {
		return p.deps.NewTokenizer(ctx, checkpoint)
	}

	if localCheckpoint(checkpoint) {
		return tokenize.NewHFTokenizer(filepath.Join(checkpoint, "tokenizer.json"))
	}

	dir := filepath.Join(p.cacheDir(), "models", internal.SanitizeFilename(checkpoint))
	path, err := p.hub.Download(ctx, checkpoint, "tokenizer.json", dir)
	if err != nil {
		return nil, fmt.Errorf("failed to download tokenizer for %s: %w", checkpoint, err)
	}
	return tokenize.NewHFTokenizer(path)
}

func (p *Processor) newGenerator(checkpoint string) (translation.Generator, error) {
	if p.deps.NewGenerator != nil {
		return p.deps.NewGenerator(checkpoint)
	}

	token := p.runtime.InferenceToken
	if token == "" {
		token = hfToken(p.env)
	}
	switch p.runtime.InferenceProvider {
	case config.ProviderOpenAI:
		return translation.NewOpenAIGenerator(p.runtime.InferenceEndpoint, token), nil
	case config.ProviderEndpoint, "":
		if p.runtime.InferenceEndpoint == "" {
			return nil, fmt.Errorf("no inference endpoint configured (use --inference-endpoint or FRWOLOF_INFERENCE_ENDPOINT)")
		}
		return translation.NewEndpointGenerator(p.runtime.InferenceEndpoint, token), nil
	}
	return nil, fmt.Errorf("unknown inference provider %q", p.runtime.InferenceProvider)
}

// NewTranslator loads the tokenizer and generator for checkpoint.
func (p *Processor) NewTranslator(ctx context.Context, checkpoint string) (*translation.Translator, error) {
	tk, err := p.loadTokenizer(ctx, checkpoint)
	if err != nil {
		return nil, err
	}
	gen, err := p.newGenerator(checkpoint)
	if err != nil {
		return nil, err
	}

	model := p.config.Model
	model.Checkpoint = checkpoint
	cfg := translation.Config{
		Model:     model,
		Dataset:   p.config.Dataset,
		Tokenizer: tk,
		Generator: gen,
		NumBeams:  p.runtime.NumBeams,
		Publisher: func(token string) translation.Publisher { return p.hub.WithToken(token) },
		Logger:    p.logger,
	}
	if localCheckpoint(checkpoint) {
		cfg.ArtifactDir = checkpoint
	}
	return translation.NewTranslator(cfg)
}

// ResolveCheckpoint picks the checkpoint from the argument, then
// MODEL_CHECKPOINT, then asks when only the base model is configured.
func (p *Processor) ResolveCheckpoint(args []string) string {
	if len(args) > 0 && args[0] != "" {
		p.printf("Using model checkpoint from command line: %s\n", args[0])
		return args[0]
	}

	checkpoint := p.config.Model.Checkpoint
	if checkpoint != config.DefaultCheckpoint {
		return checkpoint
	}

	p.printf("\nNo model checkpoint specified.\n")
	p.printf("You can:\n")
	p.printf("  1. Set MODEL_CHECKPOINT in your .env file\n")
	p.printf("  2. Pass it as argument: frwolof <checkpoint>\n")
	p.printf("  3. Enter it now (or press Enter to use base model)\n")

	answer, err := p.prompter.Ask("\nModel checkpoint (or Enter for base model): ")
	if err == nil && answer != "" {
		return answer
	}
	if err != nil {
		p.printf("\n")
	}
	p.printf("Using base NLLB model (may not be fine-tuned for French-Wolof)\n")
	return checkpoint
}
