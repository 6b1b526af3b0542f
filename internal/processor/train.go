package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/galsenai/french-wolof-translator/internal/archive"
	"github.com/galsenai/french-wolof-translator/internal/dataset"
	"github.com/galsenai/french-wolof-translator/internal/evaluate"
	"github.com/galsenai/french-wolof-translator/internal/tracking"
	"github.com/galsenai/french-wolof-translator/internal/train"
)

// RunTraining fine-tunes the configured checkpoint on the parallel corpus
// and prints the final BLEU score.
func (p *Processor) RunTraining(ctx context.Context) error {
	cfg := p.config
	cfg.Training.PushToHub = cfg.Training.HubModelID != ""

	p.printf("🚀 French-Wolof translation model training\n")
	p.printf("Checkpoint:     %s\n", cfg.Model.Checkpoint)
	p.printf("Dataset:        %s\n", cfg.Dataset.DatasetName)
	p.printf("Output:         %s\n", cfg.Training.OutputDir)
	p.printf("Epochs:         %d\n", cfg.Training.NumTrainEpochs)
	p.printf("Learning rate:  %g\n", cfg.Training.LearningRate)
	p.printf("Bidirectional:  %t\n", cfg.Dataset.Bidirectional)
	if cfg.Training.PushToHub {
		p.printf("Hub model:      %s\n", cfg.Training.HubModelID)
	}
	if cfg.Tracking.Enabled {
		p.printf("W&B project:    %s\n", cfg.Tracking.ProjectName)
	}
	p.printf("\n")

	if err := train.ConfirmHubPush(&cfg.Training, p.prompter, p.logger); err != nil {
		return err
	}

	if p.flags.Archive {
		if _, err := os.Stat(cfg.Training.OutputDir); err == nil {
			dest, err := archive.ArchiveOutputDir(cfg.Training.OutputDir)
			if err != nil {
				return err
			}
			p.printf("Archived previous output to %s\n", dest)
		}
	}

	tk, err := p.loadTokenizer(ctx, cfg.Model.Checkpoint)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}

	cacheDir := p.cacheDir()
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := dataset.OpenStore(filepath.Join(cacheDir, "datasets.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	src := &dataset.CachedSource{
		Source:  dataset.NewRowsClient(p.runtime.DatasetsEndpoint, hfToken(p.env)),
		Store:   store,
		Refresh: p.flags.RefreshDataset,
	}
	tokenized, err := dataset.NewProcessor(tk, src, cfg.Dataset, cfg.Model, p.logger).Prepare(ctx)
	if err != nil {
		return err
	}
	p.printf("📊 Dataset: %d training examples, %d test examples\n",
		len(tokenized[dataset.SplitTrain]), len(tokenized[dataset.SplitTest]))

	backend := p.deps.Backend
	if backend == nil {
		backend = &train.ProcessBackend{Argv: p.runtime.TrainerArgv(), Logger: p.logger}
	}
	tracker := p.deps.Tracker
	if tracker == nil && cfg.Tracking.Enabled {
		tracker = tracking.NewWandbClient(tracking.DefaultEndpoint, cfg.Tracking.APIKey)
	}

	trainer, err := train.NewTrainer(ctx, train.Options{
		Config:    cfg,
		Tokenizer: tk,
		Backend:   backend,
		Tracker:   tracker,
		LookPath:  p.deps.LookPath,
		Logger:    p.logger,
	})
	if err != nil {
		return err
	}
	p.printf("Device: %s\n\n", trainer.Device())

	trainMetrics, err := trainer.Train(ctx, tokenized[dataset.SplitTrain], tokenized[dataset.SplitTest])
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	p.logger.Infow("training finished", "metrics", trainMetrics)

	evalMetrics, err := trainer.Evaluate(ctx, tokenized[dataset.SplitTest])
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	p.printf("\n✅ Training complete\n")
	p.printf("Final BLEU Score: %.2f\n", evalMetrics["eval_"+evaluate.MetricBLEU])
	if cfg.Training.PushToHub {
		p.printf("Model pushed to %s/%s\n", p.runtime.HubEndpoint, cfg.Training.HubModelID)
	}
	return nil
}
