package env

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Recognised variable names.
const (
	KeyHFToken            = "HF_TOKEN"
	KeyHubUsername        = "HUB_USERNAME"
	KeyHubModelName       = "HUB_MODEL_NAME"
	KeyModelCheckpoint    = "MODEL_CHECKPOINT"
	KeyDatasetName        = "DATASET_NAME"
	KeyDatasetSeed        = "DATASET_SEED"
	KeyTrainBidirectional = "TRAIN_BIDIRECTIONAL"
	KeyWandbAPIKey        = "WANDB_API_KEY"
	KeyWandbProjectName   = "WANDB_PROJECT_NAME"
	KeyWandbEnabled       = "WANDB_ENABLED"
	KeyOutputDir          = "OUTPUT_DIR"
	KeyNumTrainEpochs     = "NUM_TRAIN_EPOCHS"
	KeyLearningRate       = "LEARNING_RATE"
	KeyLogLevel           = "LOG_LEVEL"
)

// DefaultHubModelName is used to compose the hub model id when only the
// username is configured.
const DefaultHubModelName = "wolofToFrenchTranslator_nllb"

var keys = []string{
	KeyHFToken, KeyHubUsername, KeyHubModelName, KeyModelCheckpoint,
	KeyDatasetName, KeyDatasetSeed, KeyTrainBidirectional,
	KeyWandbAPIKey, KeyWandbProjectName, KeyWandbEnabled,
	KeyOutputDir, KeyNumTrainEpochs, KeyLearningRate, KeyLogLevel,
}

// ErrInvalidValue is returned when a variable is present but cannot be parsed.
var ErrInvalidValue = errors.New("invalid environment value")

// Environment holds the typed view of the recognised variables. String fields
// are empty and pointer fields nil when the variable is absent.
type Environment struct {
	HFToken          string   `env:"HF_TOKEN"`
	HubUsername      string   `env:"HUB_USERNAME"`
	HubModelName     string   `env:"HUB_MODEL_NAME" envDefault:"wolofToFrenchTranslator_nllb"`
	ModelCheckpoint  string   `env:"MODEL_CHECKPOINT"`
	DatasetName      string   `env:"DATASET_NAME"`
	DatasetSeed      *int64   `env:"DATASET_SEED"`
	WandbAPIKey      string   `env:"WANDB_API_KEY"`
	WandbProjectName string   `env:"WANDB_PROJECT_NAME"`
	OutputDir        string   `env:"OUTPUT_DIR"`
	NumTrainEpochs   *int     `env:"NUM_TRAIN_EPOCHS"`
	LearningRate     *float64 `env:"LEARNING_RATE"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`

	wandbEnabled       string
	trainBidirectional string
}

// Load resolves the recognised variables from src. A nil src behaves like
// NopSource.
func Load(src Source) (*Environment, error) {
	if src == nil {
		src = NopSource{}
	}

	vars := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := src.Lookup(key); ok && strings.TrimSpace(v) != "" {
			vars[key] = strings.TrimSpace(v)
		}
	}

	e := &Environment{}
	if err := env.ParseWithOptions(e, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	e.wandbEnabled = vars[KeyWandbEnabled]
	e.trainBidirectional = vars[KeyTrainBidirectional]
	return e, nil
}

// WandbEnabled reports whether WANDB_ENABLED is "true" (case-insensitive).
func (e *Environment) WandbEnabled() bool {
	return e != nil && strings.EqualFold(e.wandbEnabled, "true")
}

// TrainBidirectional reports whether TRAIN_BIDIRECTIONAL is "true"
// (case-insensitive).
func (e *Environment) TrainBidirectional() bool {
	return e != nil && strings.EqualFold(e.trainBidirectional, "true")
}

// HubModelID returns "username/model-name" when both parts are configured.
func (e *Environment) HubModelID() (string, bool) {
	if e == nil || e.HubUsername == "" || e.HubModelName == "" {
		return "", false
	}
	return e.HubUsername + "/" + e.HubModelName, true
}

// LoadDotEnv reads KEY=VALUE settings files into the process environment.
// Missing files are skipped; variables already set are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
