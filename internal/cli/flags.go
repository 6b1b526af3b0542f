package cli

import "github.com/galsenai/french-wolof-translator/internal/config"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	EnvFile    string
	OutputDir  string
	BatchFile  string
	SourceLang string
	ListModels bool
	Publish    bool
	Locale     string

	// Train flags
	Archive        bool
	RefreshDataset bool

	// Runtime flags
	HubEndpoint       string
	DatasetsEndpoint  string
	InferenceProvider string
	InferenceEndpoint string
	InferenceToken    string
	TrainerCommand    string
	CacheDir          string
	NumBeams          int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	rt := config.DefaultRuntime()
	return &Flags{
		EnvFile:           ".env",
		OutputDir:         ".",
		SourceLang:        "fr",
		Locale:            "fr",
		HubEndpoint:       rt.HubEndpoint,
		DatasetsEndpoint:  rt.DatasetsEndpoint,
		InferenceProvider: rt.InferenceProvider,
		InferenceEndpoint: rt.InferenceEndpoint,
		TrainerCommand:    rt.TrainerCommand,
		CacheDir:          rt.CacheDir,
		NumBeams:          rt.NumBeams,
	}
}
