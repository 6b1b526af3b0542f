package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/testutil"
)

type recordingGenerator struct {
	requests []Request
	gen      func(req Request) Generation
	err      error
}

func (g *recordingGenerator) Generate(ctx context.Context, req Request) (Generation, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return Generation{}, g.err
	}
	return g.gen(req), nil
}

type recordingPublisher struct {
	token   string
	created []string
	dirs    []string
}

func (p *recordingPublisher) CreateRepo(ctx context.Context, repoID string, private bool) error {
	p.created = append(p.created, repoID)
	return nil
}

func (p *recordingPublisher) UploadFolder(ctx context.Context, repoID, dir, message string) error {
	p.dirs = append(p.dirs, dir)
	return nil
}

func newTestTranslator(t *testing.T, gen *recordingGenerator) (*Translator, *testutil.FakeTokenizer) {
	t.Helper()
	tk := testutil.NewFakeTokenizer()
	set := config.Defaults()
	tr, err := NewTranslator(Config{
		Model:     set.Model,
		Dataset:   set.Dataset,
		Tokenizer: tk,
		Generator: gen,
	})
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}
	return tr, tk
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		tag     string
		want    Language
		wantErr bool
	}{
		{tag: "fr", want: French},
		{tag: "FR", want: French},
		{tag: "wo", want: Wolof},
		{tag: "Wo", want: Wolof},
		{tag: " wo ", wantErr: true},
		{tag: "en", wantErr: true},
		{tag: "fra", wantErr: true},
		{tag: "FRA", wantErr: true},
		{tag: "fre", wantErr: true},
		{tag: "wol", wantErr: true},
		{tag: "wo-SN", wantErr: true},
		{tag: "fr-FR", wantErr: true},
		{tag: "", wantErr: true},
		{tag: "wolof", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseLanguage(tt.tag)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLanguage) {
					t.Errorf("ParseLanguage(%q) error = %v, want ErrInvalidLanguage", tt.tag, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseLanguage(%q) = %q, %v, want %q", tt.tag, got, err, tt.want)
			}
		})
	}
}

func TestTranslateInvalidLanguageSkipsTokenizer(t *testing.T) {
	for _, tag := range []string{"en", "fra", "FRA", "fre", "wol", "fr-Latn"} {
		t.Run(tag, func(t *testing.T) {
			gen := &recordingGenerator{}
			tr, tk := newTestTranslator(t, gen)

			_, err := tr.Translate(context.Background(), "Bonjour", tag)
			if !errors.Is(err, ErrInvalidLanguage) {
				t.Fatalf("Translate(%q) error = %v, want ErrInvalidLanguage", tag, err)
			}
			if tk.Calls != 0 {
				t.Errorf("tokenizer called %d times, want 0", tk.Calls)
			}
			if len(gen.requests) != 0 {
				t.Errorf("generator called %d times, want 0", len(gen.requests))
			}
		})
	}
}

func TestTranslateUsesDirectionPrefix(t *testing.T) {
	gen := &recordingGenerator{gen: func(req Request) Generation { return Generation{Text: "ok"} }}
	tr, _ := newTestTranslator(t, gen)
	ctx := context.Background()

	if _, err := tr.TranslateFrenchToWolof(ctx, "Bonjour"); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.TranslateWolofToFrench(ctx, "Salaam aleekum"); err != nil {
		t.Fatal(err)
	}

	fr, wo := gen.requests[0].Prompt, gen.requests[1].Prompt
	if fr != config.PrefixFrToWo+"Bonjour" || strings.Contains(fr, config.PrefixWoToFr) {
		t.Errorf("French prompt = %q", fr)
	}
	if wo != config.PrefixWoToFr+"Salaam aleekum" || strings.Contains(wo, config.PrefixFrToWo) {
		t.Errorf("Wolof prompt = %q", wo)
	}
}

func TestTranslateDecodesTokenIDs(t *testing.T) {
	var tk *testutil.FakeTokenizer
	gen := &recordingGenerator{gen: func(req Request) Generation {
		ids := append([]int{testutil.FakeBOSID}, tk.IDs("Salaam aleekum")...)
		return Generation{TokenIDs: append(ids, -100, -100)}
	}}
	tr, fake := newTestTranslator(t, gen)
	tk = fake

	got, err := tr.Translate(context.Background(), "Bonjour", "FR")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Salaam aleekum" {
		t.Errorf("Translate() = %q", got)
	}

	req := gen.requests[0]
	if req.MaxLength != 30 || req.NumBeams != 1 {
		t.Errorf("request limits = %d/%d, want 30/1", req.MaxLength, req.NumBeams)
	}
	if req.Model != config.DefaultCheckpoint {
		t.Errorf("request model = %q", req.Model)
	}
}

func TestTranslateCapsGenerationLength(t *testing.T) {
	long := strings.Repeat("jamm ", 100)
	gen := &recordingGenerator{gen: func(req Request) Generation { return Generation{Text: long} }}
	tr, _ := newTestTranslator(t, gen)

	got, err := tr.Translate(context.Background(), "paix", "fr")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(strings.Fields(got)); n > 30 {
		t.Errorf("translation has %d tokens, want <= 30", n)
	}
}

func TestTranslateTruncatesInput(t *testing.T) {
	gen := &recordingGenerator{gen: func(req Request) Generation { return Generation{Text: "ok"} }}
	tr, _ := newTestTranslator(t, gen)

	if _, err := tr.Translate(context.Background(), strings.Repeat("mot ", 500), "fr"); err != nil {
		t.Fatal(err)
	}
	if n := len(gen.requests[0].InputIDs); n != 128 {
		t.Errorf("input ids = %d, want 128", n)
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	gen := &recordingGenerator{gen: func(req Request) Generation { return Generation{Text: ""} }}
	tr, _ := newTestTranslator(t, gen)

	got, err := tr.Translate(context.Background(), "", "wo")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "" {
		t.Errorf("Translate() = %q, want empty", got)
	}
}

func TestTranslateGeneratorError(t *testing.T) {
	boom := errors.New("model not found")
	tr, _ := newTestTranslator(t, &recordingGenerator{err: boom})

	if _, err := tr.Translate(context.Background(), "Bonjour", "fr"); !errors.Is(err, boom) {
		t.Errorf("Translate() error = %v, want %v", err, boom)
	}
}

func TestPublish(t *testing.T) {
	dir := testutil.CreateCheckpointDirectory(t, t.TempDir(), "wolofToFrenchTranslator_nllb")
	pub := &recordingPublisher{}
	tk := testutil.NewFakeTokenizer()

	tr, err := NewTranslator(Config{
		Tokenizer:   tk,
		Generator:   &recordingGenerator{},
		ArtifactDir: dir,
		Publisher: func(token string) Publisher {
			pub.token = token
			return pub
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Publish(context.Background(), "galsen/wolof-nllb", "hf_token"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if pub.token != "hf_token" || len(pub.created) != 1 || pub.dirs[0] != dir {
		t.Errorf("publisher = %+v", pub)
	}

	if err := tr.Publish(context.Background(), "galsen/wolof-nllb", ""); err == nil {
		t.Error("Publish() without token should fail")
	}
}

func TestPublishRemoteCheckpoint(t *testing.T) {
	tr, _ := newTestTranslator(t, &recordingGenerator{})
	if err := tr.Publish(context.Background(), "galsen/wolof-nllb", "hf_token"); !errors.Is(err, ErrNotLocal) {
		t.Errorf("Publish() error = %v, want ErrNotLocal", err)
	}
}

func TestSaveTranslation(t *testing.T) {
	tmpDir := t.TempDir()

	if err := SaveTranslation(tmpDir, "Bonjour", "Salaam aleekum"); err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}
	if err := SaveTranslation(tmpDir, "Merci", "Jërëjëf"); err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "translations.txt"))
	if err != nil {
		t.Fatalf("Failed to read translation file: %v", err)
	}
	expected := "Bonjour = Salaam aleekum\nMerci = Jërëjëf\n"
	if string(content) != expected {
		t.Errorf("Expected content %q, got %q", expected, string(content))
	}
}

func TestSaveTranslation_InvalidPath(t *testing.T) {
	if err := SaveTranslation("/nonexistent/path", "Bonjour", "Salaam"); err == nil {
		t.Error("Expected error for invalid path")
	}
}

func TestTranslationCache(t *testing.T) {
	cache := NewTranslationCache()

	if _, found := cache.Get(French, "Merci"); found {
		t.Error("Expected not found in empty cache")
	}

	cache.Add(French, "Merci", "Jërëjëf")
	cache.Add(Wolof, "Merci", "something else")

	translation, found := cache.Get(French, "Merci")
	if !found || translation != "Jërëjëf" {
		t.Errorf("Get(French) = %q, %v", translation, found)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}
