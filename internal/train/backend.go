package train

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/galsenai/french-wolof-translator/internal/evaluate"
)

// Event types emitted by a backend.
const (
	EventLog             = "log"
	EventEvalPredictions = "eval_predictions"
	EventMetrics         = "metrics"
)

// Event is one progress report from a backend.
type Event struct {
	Type    string  `json:"type"`
	Message string  `json:"message,omitempty"`
	Epoch   float64 `json:"epoch,omitempty"`
	Step    int     `json:"step,omitempty"`

	// Split is "train" or "eval" for metrics events.
	Split   string             `json:"split,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`

	Predictions *evaluate.Predictions `json:"predictions,omitempty"`
	LabelIDs    [][]int               `json:"label_ids,omitempty"`
}

// Job describes one backend invocation.
type Job struct {
	Dir          string
	ManifestPath string
	Env          []string
}

// Backend runs a job and reports events to handle. An error from handle
// aborts the job.
type Backend interface {
	Run(ctx context.Context, job Job, handle func(Event) error) error
}

// stopGrace bounds how long Wait keeps reading the pipes of a stopped
// trainer whose children still hold them open.
const stopGrace = 2 * time.Second

// ProcessBackend runs an external command with "--manifest <path>"
// appended. Stdout carries one JSON event per line; stderr is logged.
type ProcessBackend struct {
	Argv   []string
	Logger *zap.SugaredLogger
}

// Run implements Backend.
func (b *ProcessBackend) Run(ctx context.Context, job Job, handle func(Event) error) error {
	if len(b.Argv) == 0 {
		return fmt.Errorf("no trainer command configured")
	}
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	args := append(append([]string{}, b.Argv[1:]...), "--manifest", job.ManifestPath)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmd := exec.CommandContext(runCtx, b.Argv[0], args...)
	cmd.Dir = job.Dir
	cmd.WaitDelay = stopGrace
	cmd.Env = append(os.Environ(), job.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start trainer: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			logger.Debugw("trainer", "stderr", sc.Text())
		}
	}()

	if err := readEvents(stdout, handle, logger); err != nil {
		// The trainer is stopped and its remaining output discarded.
		cancel()
		_ = cmd.Wait()
		wg.Wait()
		return err
	}
	wg.Wait()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return fmt.Errorf("trainer failed: %w", waitErr)
	}
	return nil
}

func readEvents(r io.Reader, handle func(Event) error, logger *zap.SugaredLogger) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			logger.Infow("trainer", "output", string(line))
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("malformed trainer event: %w", err)
		}
		if err := handle(ev); err != nil {
			return err
		}
	}
	return sc.Err()
}
