package config

import "strings"

// Inference providers understood by the translator.
const (
	ProviderEndpoint = "endpoint"
	ProviderOpenAI   = "openai"
)

// Runtime holds operational settings that are not part of the model
// configuration: where remote services live and how the training framework
// is launched.
type Runtime struct {
	HubEndpoint       string
	DatasetsEndpoint  string
	InferenceProvider string
	InferenceEndpoint string
	InferenceToken    string
	TrainerCommand    string
	CacheDir          string
	NumBeams          int
}

// DefaultRuntime returns the public Hugging Face endpoints and a local
// trainer command.
func DefaultRuntime() Runtime {
	return Runtime{
		HubEndpoint:       "https://huggingface.co",
		DatasetsEndpoint:  "https://datasets-server.huggingface.co",
		InferenceProvider: ProviderEndpoint,
		TrainerCommand:    "python -m frwolof_runner",
		NumBeams:          1,
	}
}

// TrainerArgv splits TrainerCommand into an argv slice.
func (r Runtime) TrainerArgv() []string {
	return strings.Fields(r.TrainerCommand)
}
