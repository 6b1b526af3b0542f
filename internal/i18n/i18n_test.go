package i18n

import "testing"

func TestTranslator(t *testing.T) {
	tr, err := NewTranslator(DefaultLocale)
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}

	tests := []struct {
		locale string
		key    string
		data   map[string]any
		want   string
	}{
		{locale: "fr", key: "lang_wo", want: "Wolof"},
		{locale: "en", key: "lang_fr", want: "French"},
		{locale: "", key: "lang_fr", want: "Français"},
		{locale: "de", key: "lang_fr", want: "Français"},
		{locale: "en", key: "model_used", data: map[string]any{"Checkpoint": "galsen/nllb"}, want: "Model: galsen/nllb"},
		{locale: "fr", key: "no_such_key", want: "no_such_key"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.key, func(t *testing.T) {
			if got := tr.T(tt.locale, tt.key, tt.data); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestLocalizer(t *testing.T) {
	tr, err := NewTranslator("fr")
	if err != nil {
		t.Fatal(err)
	}

	l := tr.For("en")
	if got := l.T("test_case", map[string]any{"Index": 2, "Direction": "Wolof → French"}); got != "Test 2: Wolof → French" {
		t.Errorf("T() = %q", got)
	}
	if got := l.T("tests_done"); got != "✓ All tests finished!" {
		t.Errorf("T() = %q", got)
	}
}
