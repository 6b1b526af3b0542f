package train

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/galsenai/french-wolof-translator/internal"
	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/dataset"
	"github.com/galsenai/french-wolof-translator/internal/evaluate"
	"github.com/galsenai/french-wolof-translator/internal/tokenize"
	"github.com/galsenai/french-wolof-translator/internal/tracking"
)

// Tasks understood by the backend.
const (
	TaskTrain    = "train"
	TaskEvaluate = "evaluate"
)

// Manifest is written to every run directory for the backend.
type Manifest struct {
	Task       string    `yaml:"task"`
	Checkpoint string    `yaml:"checkpoint"`
	Device     string    `yaml:"device"`
	MaxLength  int       `yaml:"max_length"`
	TrainFile  string    `yaml:"train_file,omitempty"`
	EvalFile   string    `yaml:"eval_file"`
	Arguments  Arguments `yaml:"arguments"`
}

// Options configure NewTrainer.
type Options struct {
	Config    *config.Set
	Tokenizer tokenize.Tokenizer
	Backend   Backend
	Tracker   tracking.Tracker

	// LookPath locates nvidia-smi; nil uses exec.LookPath.
	LookPath func(string) (string, error)
	Logger   *zap.SugaredLogger
}

// Trainer fine-tunes the configured checkpoint.
type Trainer struct {
	model     config.ModelConfig
	training  config.TrainingConfig
	tracking  config.TrackingConfig
	tokenizer tokenize.Tokenizer
	evaluator *evaluate.Evaluator
	backend   Backend
	run       tracking.Run
	device    string
	runName   string
	logger    *zap.SugaredLogger
}

// NewTrainer picks the device and registers the tracking run when
// tracking is enabled.
func NewTrainer(ctx context.Context, opts Options) (*Trainer, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if opts.Config.Model.Checkpoint == "" {
		return nil, fmt.Errorf("model checkpoint is required")
	}
	if opts.Tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("training backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	t := &Trainer{
		model:     opts.Config.Model,
		training:  opts.Config.Training,
		tracking:  opts.Config.Tracking,
		tokenizer: opts.Tokenizer,
		evaluator: evaluate.NewEvaluator(opts.Tokenizer),
		backend:   opts.Backend,
		device:    DetectDevice(opts.LookPath),
		runName:   internal.GenerateRunName(opts.Config.Model.Checkpoint),
		logger:    logger,
	}

	if t.device == DeviceCPU && t.training.FP16 {
		logger.Warnw("no GPU detected, disabling fp16")
		t.training.FP16 = false
	}
	logger.Infow("trainer ready", "checkpoint", t.model.Checkpoint, "device", t.device)

	if t.tracking.Enabled {
		tracker := opts.Tracker
		if tracker == nil {
			tracker = tracking.Nop{}
		}
		if err := tracker.Login(ctx); err != nil {
			return nil, fmt.Errorf("experiment tracking login failed: %w", err)
		}
		run, err := tracker.StartRun(ctx, t.tracking.ProjectName, t.runName, t.runConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to start tracking run: %w", err)
		}
		t.run = run
		logger.Infow("tracking run started", "project", run.Project, "run", run.ID)
	}

	return t, nil
}

// Device returns the selected device.
func (t *Trainer) Device() string {
	return t.device
}

// TrainingArguments returns the arguments handed to the backend.
func (t *Trainer) TrainingArguments() Arguments {
	args := NewArguments(t.training, t.model, t.tracking.Enabled)
	args.RunName = t.runName
	return args
}

// DataCollator returns the padding-aware collator for the tokenizer.
func (t *Trainer) DataCollator() *Collator {
	return NewCollator(t.tokenizer.PadTokenID())
}

// Train fine-tunes on train, evaluating on eval at the configured
// strategy, and returns the final training metrics.
func (t *Trainer) Train(ctx context.Context, train, eval []dataset.Example) (evaluate.Metrics, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("training split is empty")
	}

	var final evaluate.Metrics
	err := t.runTask(ctx, TaskTrain, train, eval, func(ev Event) error {
		switch ev.Type {
		case EventEvalPredictions:
			m, err := t.computeMetrics(ev)
			if err != nil {
				return err
			}
			t.logger.Infow("evaluation", "epoch", ev.Epoch, "step", ev.Step,
				"bleu", m[evaluate.MetricBLEU], "gen_len", m[evaluate.MetricGenLen])
		case EventMetrics:
			if ev.Split == TaskTrain || ev.Split == "" {
				final = evaluate.Metrics(ev.Metrics)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("trainer reported no training metrics")
	}
	return final, nil
}

// Evaluate generates over eval and returns "eval_"-prefixed metrics,
// including eval_bleu and eval_gen_len.
func (t *Trainer) Evaluate(ctx context.Context, eval []dataset.Example) (evaluate.Metrics, error) {
	if len(eval) == 0 {
		return nil, fmt.Errorf("evaluation split is empty")
	}

	result := make(evaluate.Metrics)
	gotPredictions := false
	err := t.runTask(ctx, TaskEvaluate, nil, eval, func(ev Event) error {
		switch ev.Type {
		case EventEvalPredictions:
			m, err := t.computeMetrics(ev)
			if err != nil {
				return err
			}
			for k, v := range m {
				result[k] = v
			}
			gotPredictions = true
		case EventMetrics:
			for k, v := range ev.Metrics {
				result[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !gotPredictions {
		return nil, fmt.Errorf("trainer returned no evaluation predictions")
	}

	prefixed := make(evaluate.Metrics, len(result))
	for k, v := range result {
		if !strings.HasPrefix(k, "eval_") {
			k = "eval_" + k
		}
		prefixed[k] = v
	}
	return prefixed, nil
}

func (t *Trainer) computeMetrics(ev Event) (evaluate.Metrics, error) {
	p := evaluate.EvalPrediction{LabelIDs: ev.LabelIDs}
	if ev.Predictions != nil {
		p.Predictions = *ev.Predictions
	}
	m, err := t.evaluator.ComputeMetrics(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	return m, nil
}

func (t *Trainer) runTask(ctx context.Context, task string, train, eval []dataset.Example, handle func(Event) error) error {
	dir := filepath.Join(t.training.OutputDir, "runs", t.runName+"-"+task)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	collator := t.DataCollator()
	manifest := Manifest{
		Task:       task,
		Checkpoint: t.model.Checkpoint,
		Device:     t.device,
		MaxLength:  t.model.MaxLength,
		EvalFile:   "eval.jsonl",
		Arguments:  t.TrainingArguments(),
	}
	if train != nil {
		manifest.TrainFile = "train.jsonl"
		if err := writeBatches(filepath.Join(dir, manifest.TrainFile), collator.Batches(train, t.training.PerDeviceTrainBatchSize)); err != nil {
			return err
		}
	}
	if err := writeBatches(filepath.Join(dir, manifest.EvalFile), collator.Batches(eval, t.training.PerDeviceEvalBatchSize)); err != nil {
		return err
	}

	manifestPath := filepath.Join(dir, "manifest.yaml")
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	env := t.run.Env()
	if t.training.HubToken != "" {
		env = append(env, "HF_TOKEN="+t.training.HubToken)
	}

	t.logger.Infow("starting backend", "task", task, "dir", dir)
	return t.backend.Run(ctx, Job{Dir: dir, ManifestPath: manifestPath, Env: env}, func(ev Event) error {
		if ev.Type == EventLog {
			t.logger.Infow("trainer", "message", ev.Message, "epoch", ev.Epoch, "step", ev.Step)
		}
		return handle(ev)
	})
}

func (t *Trainer) runConfig() map[string]interface{} {
	data, err := json.Marshal(t.TrainingArguments())
	if err != nil {
		return nil
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil
	}
	cfg["checkpoint"] = t.model.Checkpoint
	cfg["device"] = t.device
	return cfg
}

func writeBatches(path string, batches []Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, b := range batches {
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
