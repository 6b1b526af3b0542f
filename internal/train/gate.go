package train

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/galsenai/french-wolof-translator/internal/config"
)

// ErrAborted is returned when the operator declines to continue.
var ErrAborted = errors.New("training aborted by operator")

// HubPushQuestion is asked when hub push is enabled without a token.
const HubPushQuestion = "No hub token is configured. Continue without pushing to the hub?"

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// ConfirmHubPush checks that hub push has credentials. When push is
// enabled without a token the operator must confirm; on confirmation push
// is disabled in cfg and training may proceed, otherwise ErrAborted is
// returned.
func ConfirmHubPush(cfg *config.TrainingConfig, p Prompter, logger *zap.SugaredLogger) error {
	if !cfg.PushToHub || cfg.HubToken != "" {
		return nil
	}
	if logger != nil {
		logger.Warnw("push to hub is enabled but HF_TOKEN is not set", "hub_model_id", cfg.HubModelID)
	}
	if p == nil {
		return ErrAborted
	}

	ok, err := p.Confirm(HubPushQuestion)
	if errors.Is(err, io.EOF) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		return ErrAborted
	}

	cfg.PushToHub = false
	return nil
}
