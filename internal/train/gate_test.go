package train

import (
	"errors"
	"io"
	"testing"

	"github.com/galsenai/french-wolof-translator/internal/config"
)

type scriptedPrompter struct {
	answer    bool
	err       error
	questions []string
}

func (p *scriptedPrompter) Confirm(question string) (bool, error) {
	p.questions = append(p.questions, question)
	return p.answer, p.err
}

func TestConfirmHubPush(t *testing.T) {
	tests := []struct {
		name      string
		push      bool
		token     string
		prompter  *scriptedPrompter
		wantErr   error
		wantPush  bool
		wantAsked bool
	}{
		{name: "push disabled", push: false, prompter: &scriptedPrompter{}, wantPush: false},
		{name: "push with token", push: true, token: "hf_x", prompter: &scriptedPrompter{}, wantPush: true},
		{name: "operator continues", push: true, prompter: &scriptedPrompter{answer: true}, wantPush: false, wantAsked: true},
		{name: "operator declines", push: true, prompter: &scriptedPrompter{answer: false}, wantErr: ErrAborted, wantPush: true, wantAsked: true},
		{name: "input closed", push: true, prompter: &scriptedPrompter{err: io.EOF}, wantErr: ErrAborted, wantPush: true, wantAsked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults().Training
			cfg.PushToHub = tt.push
			cfg.HubToken = tt.token

			err := ConfirmHubPush(&cfg, tt.prompter, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConfirmHubPush() error = %v, want %v", err, tt.wantErr)
			}
			if cfg.PushToHub != tt.wantPush {
				t.Errorf("PushToHub = %v, want %v", cfg.PushToHub, tt.wantPush)
			}
			if asked := len(tt.prompter.questions) > 0; asked != tt.wantAsked {
				t.Errorf("asked = %v, want %v", asked, tt.wantAsked)
			}
		})
	}
}

func TestDetectDevice(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/nvidia-smi", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	if got := DetectDevice(found); got != DeviceCUDA {
		t.Errorf("DetectDevice(found) = %q", got)
	}
	if got := DetectDevice(missing); got != DeviceCPU {
		t.Errorf("DetectDevice(missing) = %q", got)
	}
}
