package evaluate

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize13a(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"Naka nga def?", []string{"Naka", "nga", "def", "?"}},
		{"It costs 3.50 euros.", []string{"It", "costs", "3.50", "euros", "."}},
		{"l'homme", []string{"l'homme"}},
		{"a &amp; b", []string{"a", "&", "b"}},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Tokenize13a(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize13a(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCorpusBLEU(t *testing.T) {
	tests := []struct {
		name string
		hyps []string
		refs [][]string
		want float64
	}{
		{
			name: "identical sentence",
			hyps: []string{"le chat est sur le tapis"},
			refs: [][]string{{"le chat est sur le tapis"}},
			want: 100,
		},
		{
			name: "single word",
			hyps: []string{"bonjour"},
			refs: [][]string{{"bonjour"}},
			want: 100,
		},
		{
			name: "brevity penalty",
			hyps: []string{"le chat"},
			refs: [][]string{{"le chat est sur le tapis"}},
			want: 100 * math.Exp(1-6.0/2.0),
		},
		{
			name: "no overlap is smoothed",
			hyps: []string{"a b"},
			refs: [][]string{{"c d"}},
			want: 25,
		},
		{
			name: "empty corpus",
			hyps: nil,
			refs: nil,
			want: 0,
		},
		{
			name: "closest of several references",
			hyps: []string{"jamm rekk"},
			refs: [][]string{{"jamm rekk", "jamm rekk rekk rekk"}},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorpusBLEU(tt.hyps, tt.refs)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CorpusBLEU() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCorpusBLEU_PartialMatchBetweenBounds(t *testing.T) {
	got := CorpusBLEU(
		[]string{"le chat est sur la table"},
		[][]string{{"le chat est sur le tapis"}},
	)
	if got <= 0 || got >= 100 {
		t.Errorf("Expected partial score in (0, 100), got %f", got)
	}
}
