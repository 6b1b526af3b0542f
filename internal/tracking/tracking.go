// Package tracking records training runs with an experiment tracker. The
// Weights & Biases client only registers the run; metrics are streamed by
// the training backend, which picks the run up from its environment.
package tracking

import (
	"context"
	"errors"
)

// DefaultEndpoint is the Weights & Biases API.
const DefaultEndpoint = "https://api.wandb.ai"

// ErrUnauthorized is returned when the tracker rejects the API key.
var ErrUnauthorized = errors.New("tracker rejected the API key")

// Run identifies a registered run.
type Run struct {
	ID      string
	Name    string
	Project string
	Entity  string
}

// Env returns the variables that attach the training backend to the run.
func (r Run) Env() []string {
	if r.ID == "" {
		return []string{"WANDB_MODE=disabled"}
	}
	env := []string{
		"WANDB_RUN_ID=" + r.ID,
		"WANDB_PROJECT=" + r.Project,
		"WANDB_RESUME=allow",
	}
	if r.Name != "" {
		env = append(env, "WANDB_NAME="+r.Name)
	}
	if r.Entity != "" {
		env = append(env, "WANDB_ENTITY="+r.Entity)
	}
	return env
}

// Tracker registers training runs.
type Tracker interface {
	Login(ctx context.Context) error
	StartRun(ctx context.Context, project, name string, cfg map[string]interface{}) (Run, error)
}

// Nop is a Tracker that records nothing.
type Nop struct{}

// Login implements Tracker.
func (Nop) Login(context.Context) error { return nil }

// StartRun implements Tracker.
func (Nop) StartRun(context.Context, string, string, map[string]interface{}) (Run, error) {
	return Run{}, nil
}
