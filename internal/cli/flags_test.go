package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"EnvFile", flags.EnvFile, ".env"},
		{"OutputDir", flags.OutputDir, "."},
		{"SourceLang", flags.SourceLang, "fr"},
		{"Locale", flags.Locale, "fr"},
		{"HubEndpoint", flags.HubEndpoint, "https://huggingface.co"},
		{"DatasetsEndpoint", flags.DatasetsEndpoint, "https://datasets-server.huggingface.co"},
		{"InferenceProvider", flags.InferenceProvider, "endpoint"},
		{"TrainerCommand", flags.TrainerCommand, "python -m frwolof_runner"},
		{"NumBeams", flags.NumBeams, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	boolTests := []struct {
		name  string
		value bool
	}{
		{"ListModels", flags.ListModels},
		{"Publish", flags.Publish},
		{"Archive", flags.Archive},
		{"RefreshDataset", flags.RefreshDataset},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value {
				t.Errorf("%s should default to false", tt.name)
			}
		})
	}
}
