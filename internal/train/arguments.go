package train

import "github.com/galsenai/french-wolof-translator/internal/config"

// Arguments are the sequence-to-sequence training arguments handed to the
// backend, named after the Hugging Face fields they map to.
type Arguments struct {
	OutputDir               string   `yaml:"output_dir" json:"output_dir"`
	EvalStrategy            string   `yaml:"eval_strategy" json:"eval_strategy"`
	LearningRate            float64  `yaml:"learning_rate" json:"learning_rate"`
	PerDeviceTrainBatchSize int      `yaml:"per_device_train_batch_size" json:"per_device_train_batch_size"`
	PerDeviceEvalBatchSize  int      `yaml:"per_device_eval_batch_size" json:"per_device_eval_batch_size"`
	WeightDecay             float64  `yaml:"weight_decay" json:"weight_decay"`
	SaveTotalLimit          int      `yaml:"save_total_limit" json:"save_total_limit"`
	NumTrainEpochs          int      `yaml:"num_train_epochs" json:"num_train_epochs"`
	FP16                    bool     `yaml:"fp16" json:"fp16"`
	PushToHub               bool     `yaml:"push_to_hub" json:"push_to_hub"`
	HubModelID              string   `yaml:"hub_model_id,omitempty" json:"hub_model_id,omitempty"`
	PredictWithGenerate     bool     `yaml:"predict_with_generate" json:"predict_with_generate"`
	GenerationMaxLength     int      `yaml:"generation_max_length" json:"generation_max_length"`
	ReportTo                []string `yaml:"report_to" json:"report_to"`
	RunName                 string   `yaml:"run_name,omitempty" json:"run_name,omitempty"`

	// HubToken reaches the backend through its environment only.
	HubToken string `yaml:"-" json:"-"`
}

// NewArguments builds Arguments from the training and model bundles.
func NewArguments(tc config.TrainingConfig, mc config.ModelConfig, reportToWandb bool) Arguments {
	reportTo := []string{"none"}
	if reportToWandb {
		reportTo = []string{"wandb"}
	}
	return Arguments{
		OutputDir:               tc.OutputDir,
		EvalStrategy:            tc.EvalStrategy,
		LearningRate:            tc.LearningRate,
		PerDeviceTrainBatchSize: tc.PerDeviceTrainBatchSize,
		PerDeviceEvalBatchSize:  tc.PerDeviceEvalBatchSize,
		WeightDecay:             tc.WeightDecay,
		SaveTotalLimit:          tc.SaveTotalLimit,
		NumTrainEpochs:          tc.NumTrainEpochs,
		FP16:                    tc.FP16,
		PushToHub:               tc.PushToHub,
		HubModelID:              tc.HubModelID,
		HubToken:                tc.HubToken,
		PredictWithGenerate:     true,
		GenerationMaxLength:     mc.MaxGenerationLength,
		ReportTo:                reportTo,
	}
}
