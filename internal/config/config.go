package config

import "github.com/galsenai/french-wolof-translator/internal/env"

// Defaults shared with the CLI.
const (
	DefaultCheckpoint  = "facebook/nllb-200-distilled-600M"
	DefaultDatasetName = "galsenai/french-wolof-translation"
	DefaultOutputDir   = "wolofToFrenchTranslator_nllb"
	DefaultProjectName = "french-wolof-translator"

	PrefixFrToWo = "translate French to Wolof: "
	PrefixWoToFr = "translate Wolof to French: "
)

// ModelConfig identifies the checkpoint and its sequence limits.
type ModelConfig struct {
	Checkpoint          string
	SourceLang          string // dataset column holding French text
	TargetLang          string // dataset column holding Wolof text
	MaxLength           int
	MaxGenerationLength int
}

// NewModelConfig returns the model defaults with MODEL_CHECKPOINT applied.
func NewModelConfig(e *env.Environment) ModelConfig {
	c := ModelConfig{
		Checkpoint:          DefaultCheckpoint,
		SourceLang:          "french",
		TargetLang:          "wolof",
		MaxLength:           128,
		MaxGenerationLength: 30,
	}
	if e == nil {
		return c
	}
	if e.ModelCheckpoint != "" {
		c.Checkpoint = e.ModelCheckpoint
	}
	return c
}

// TrainingConfig mirrors the fine-tuning hyperparameters handed to the
// training backend.
type TrainingConfig struct {
	OutputDir               string
	EvalStrategy            string
	LearningRate            float64
	PerDeviceTrainBatchSize int
	PerDeviceEvalBatchSize  int
	WeightDecay             float64
	SaveTotalLimit          int
	NumTrainEpochs          int
	FP16                    bool
	PushToHub               bool
	HubModelID              string
	HubToken                string
}

// NewTrainingConfig returns the training defaults with OUTPUT_DIR,
// LEARNING_RATE, NUM_TRAIN_EPOCHS, HF_TOKEN and the hub model id applied in
// that order.
func NewTrainingConfig(e *env.Environment) TrainingConfig {
	c := TrainingConfig{
		OutputDir:               DefaultOutputDir,
		EvalStrategy:            "epoch",
		LearningRate:            2e-5,
		PerDeviceTrainBatchSize: 8,
		PerDeviceEvalBatchSize:  8,
		WeightDecay:             0.01,
		SaveTotalLimit:          3,
		NumTrainEpochs:          2,
		FP16:                    true,
		PushToHub:               false,
	}
	if e == nil {
		return c
	}
	if e.OutputDir != "" {
		c.OutputDir = e.OutputDir
	}
	if e.LearningRate != nil {
		c.LearningRate = *e.LearningRate
	}
	if e.NumTrainEpochs != nil {
		c.NumTrainEpochs = *e.NumTrainEpochs
	}
	if e.HFToken != "" {
		c.HubToken = e.HFToken
	}
	if id, ok := e.HubModelID(); ok && c.HubModelID == "" {
		c.HubModelID = id
	}
	return c
}

// DatasetConfig names the parallel corpus and how it is split and prompted.
type DatasetConfig struct {
	DatasetName   string
	TestSize      float64
	PrefixFrToWo  string
	PrefixWoToFr  string
	Seed          int64
	Bidirectional bool
}

// NewDatasetConfig returns the dataset defaults with DATASET_NAME,
// DATASET_SEED and TRAIN_BIDIRECTIONAL applied.
func NewDatasetConfig(e *env.Environment) DatasetConfig {
	c := DatasetConfig{
		DatasetName:  DefaultDatasetName,
		TestSize:     0.2,
		PrefixFrToWo: PrefixFrToWo,
		PrefixWoToFr: PrefixWoToFr,
		Seed:         42,
	}
	if e == nil {
		return c
	}
	if e.DatasetName != "" {
		c.DatasetName = e.DatasetName
	}
	if e.DatasetSeed != nil {
		c.Seed = *e.DatasetSeed
	}
	if e.TrainBidirectional() {
		c.Bidirectional = true
	}
	return c
}

// TrackingConfig configures the Weights & Biases integration.
type TrackingConfig struct {
	Enabled     bool
	APIKey      string
	ProjectName string
}

// NewTrackingConfig returns the tracking defaults with WANDB_ENABLED,
// WANDB_API_KEY and WANDB_PROJECT_NAME applied.
func NewTrackingConfig(e *env.Environment) TrackingConfig {
	c := TrackingConfig{
		ProjectName: DefaultProjectName,
	}
	if e == nil {
		return c
	}
	if e.WandbEnabled() {
		c.Enabled = true
	}
	if e.WandbAPIKey != "" {
		c.APIKey = e.WandbAPIKey
	}
	if e.WandbProjectName != "" {
		c.ProjectName = e.WandbProjectName
	}
	return c
}

// Set groups the four bundles built for one run.
type Set struct {
	Model    ModelConfig
	Training TrainingConfig
	Dataset  DatasetConfig
	Tracking TrackingConfig
}

// Load builds every bundle from the same environment. A nil environment
// yields the defaults.
func Load(e *env.Environment) *Set {
	return &Set{
		Model:    NewModelConfig(e),
		Training: NewTrainingConfig(e),
		Dataset:  NewDatasetConfig(e),
		Tracking: NewTrackingConfig(e),
	}
}

// Defaults returns the bundles without any environment overrides.
func Defaults() *Set {
	return Load(nil)
}
