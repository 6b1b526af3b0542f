package processor

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/galsenai/french-wolof-translator/internal/translation"
)

// ErrSetupIncomplete is returned by RunQuickstart when a required file or
// setting is missing.
var ErrSetupIncomplete = errors.New("setup incomplete")

type smokeCase struct {
	text   string
	source translation.Language
}

var smokeCases = []smokeCase{
	{"Bonjour", translation.French},
	{"Comment allez-vous?", translation.French},
	{"Naka nga def?", translation.Wolof},
	{"Jamm rekk", translation.Wolof},
}

var genericCases = []smokeCase{
	{"Merci beaucoup", translation.French},
	{"Jërëjëf", translation.Wolof},
}

func (p *Processor) direction(lang translation.Language) string {
	if lang == translation.Wolof {
		return p.messages.T("direction_wo_fr")
	}
	return p.messages.T("direction_fr_wo")
}

func (p *Processor) langName(lang translation.Language) string {
	if lang == translation.Wolof {
		return p.messages.T("lang_wo")
	}
	return p.messages.T("lang_fr")
}

func (p *Processor) printInitError(err error) {
	p.printf("\n%s\n\n", p.messages.T("init_error", map[string]any{"Error": err}))
	p.printf("%s\n", p.messages.T("solutions_title"))
	p.printf("%s\n", p.messages.T("solution_network"))
	p.printf("%s\n", p.messages.T("solution_endpoint"))
	p.printf("%s\n", p.messages.T("solution_checkpoint"))
}

// RunSmokeTest translates a fixed set of sentences in both directions.
// A failing case is reported and the remaining cases still run.
func (p *Processor) RunSmokeTest(ctx context.Context, checkpoint string) error {
	rule := strings.Repeat("=", 60)
	p.printf("%s\n%s\n%s\n\n", rule, p.messages.T("test_title"), rule)
	p.printf("%s\n", p.messages.T("model_used", map[string]any{"Checkpoint": checkpoint}))
	p.printf("%s\n\n", p.messages.T("test_download_hint"))
	p.printf("%s\n", p.messages.T("loading_model"))

	tr, err := p.NewTranslator(ctx, checkpoint)
	if err != nil {
		p.printInitError(err)
		return err
	}
	p.printf("%s\n\n", p.messages.T("model_loaded"))

	p.printf("%s\n%s\n", p.messages.T("test_cases_title"), strings.Repeat("-", 60))
	failed := 0
	for i, c := range smokeCases {
		p.printf("\n%s\n", p.messages.T("test_case", map[string]any{"Index": i + 1, "Direction": p.direction(c.source)}))
		p.printf("%s\n", p.messages.T("test_input", map[string]any{"Text": c.text}))

		var out string
		if c.source == translation.French {
			out, err = tr.TranslateFrenchToWolof(ctx, c.text)
		} else {
			out, err = tr.TranslateWolofToFrench(ctx, c.text)
		}
		if err != nil {
			p.logger.Warnw("test case failed", "index", i+1, "error", err)
			p.printf("%s\n", p.messages.T("test_case_error", map[string]any{"Index": i + 1, "Error": err}))
			failed++
			continue
		}
		p.printf("%s\n", p.messages.T("test_output", map[string]any{"Text": out}))
	}

	p.printf("\n%s\n%s\n", strings.Repeat("-", 60), p.messages.T("generic_title"))
	for i, c := range genericCases {
		p.printf("\n%s\n", p.messages.T("test_input", map[string]any{"Text": c.text}))
		out, err := tr.Translate(ctx, c.text, string(c.source))
		if err != nil {
			p.printf("%s\n", p.messages.T("test_case_error", map[string]any{"Index": len(smokeCases) + i + 1, "Error": err}))
			failed++
			continue
		}
		p.printf("%s\n", p.messages.T("generic_translation", map[string]any{"Text": out}))
	}

	p.printf("\n%s\n%s\n", rule, p.messages.T("tests_done"))
	if failed > 0 {
		p.logger.Warnw("smoke test finished with failures", "failed", failed)
	}
	return nil
}

// RunQuickstart checks the local setup, asks for confirmation and runs a
// first translation in each direction.
func (p *Processor) RunQuickstart(ctx context.Context, checkpoint string) error {
	rule := strings.Repeat("=", 60)
	p.printf("\n%s\n%s\n%s\n\n", rule, p.messages.T("quickstart_title"), rule)
	p.printf("%s\n\n", p.messages.T("quickstart_welcome"))
	p.printf("%s\n", p.messages.T("quickstart_checking"))

	if !p.checkSetup() {
		p.printf("\n%s\n", p.messages.T("check_failed"))
		return ErrSetupIncomplete
	}
	p.printf("\n%s\n\n", p.messages.T("check_all_ok"))

	p.printf("%s\n\n", p.messages.T("quickstart_steps"))
	ok, err := p.prompter.Confirm(p.messages.T("quickstart_confirm"))
	if err != nil || !ok {
		p.printf("\n%s\n", p.messages.T("quickstart_cancelled"))
		return nil
	}

	p.printf("\n%s\n\n", p.messages.T("quickstart_starting"))
	p.printf("%s\n", p.messages.T("loading_model"))
	p.printf("%s\n", p.messages.T("loading_model_hint"))

	tr, err := p.NewTranslator(ctx, checkpoint)
	if err != nil {
		p.printf("\n%s\n", p.messages.T("quickstart_error", map[string]any{"Error": err}))
		p.printInitError(err)
		return err
	}
	p.printf("%s\n\n", p.messages.T("model_loaded"))

	for _, c := range []smokeCase{{"Bonjour", translation.French}, {"Naka nga def?", translation.Wolof}} {
		p.printf("📝 %s: %s\n", p.langName(c.source), c.text)
		p.printf("%s\n", p.messages.T("translating"))
		out, err := tr.Translate(ctx, c.text, string(c.source))
		if err != nil {
			p.printf("\n%s\n", p.messages.T("quickstart_error", map[string]any{"Error": err}))
			return err
		}
		p.printf("✨ %s: %s\n\n", p.langName(c.source.Target()), out)
	}

	p.printf("%s\n%s\n%s\n\n", rule, p.messages.T("quickstart_success"), rule)
	p.printf("%s\n", p.messages.T("quickstart_next"))
	return nil
}

// checkSetup reports the presence of the settings file and the inference
// configuration.
func (p *Processor) checkSetup() bool {
	ok := true
	check := func(item string, present bool) {
		if present {
			p.printf("%s\n", p.messages.T("check_ok", map[string]any{"Item": item}))
			return
		}
		p.printf("%s\n", p.messages.T("check_missing", map[string]any{"Item": item}))
		ok = false
	}

	_, err := os.Stat(p.flags.EnvFile)
	check(p.flags.EnvFile, err == nil)
	check("inference endpoint", p.runtime.InferenceEndpoint != "")
	return ok
}
