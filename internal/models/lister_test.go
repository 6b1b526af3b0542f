package models

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/galsenai/french-wolof-translator/internal/hub"
)

type stubHub struct {
	models []hub.Model
	err    error
	author string
}

func (s *stubHub) ListModels(ctx context.Context, author string) ([]hub.Model, error) {
	s.author = author
	return s.models, s.err
}

func TestListAvailableModels(t *testing.T) {
	h := &stubHub{models: []hub.Model{
		{ID: "galsen/sentiment-wo", PipelineTag: "text-classification"},
		{ID: "galsen/wolofToFrenchTranslator_nllb", Downloads: 42},
		{ID: "galsen/mt5-fr-wo", PipelineTag: "translation", Downloads: 3},
	}}
	var out bytes.Buffer

	if err := NewLister(h, &out).ListAvailableModels(context.Background(), "galsen"); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}
	if h.author != "galsen" {
		t.Errorf("author = %q", h.author)
	}

	got := out.String()
	mt5 := strings.Index(got, "galsen/mt5-fr-wo (3 downloads)")
	nllb := strings.Index(got, "galsen/wolofToFrenchTranslator_nllb (42 downloads)")
	other := strings.Index(got, "Other models:")
	if mt5 < 0 || nllb < 0 || other < 0 || !(mt5 < nllb && nllb < other) {
		t.Errorf("unexpected listing:\n%s", got)
	}
	if !strings.Contains(got[other:], "galsen/sentiment-wo") {
		t.Errorf("non-translation model not listed under other models:\n%s", got)
	}
}

func TestListAvailableModels_NoUsername(t *testing.T) {
	err := NewLister(&stubHub{}, &bytes.Buffer{}).ListAvailableModels(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "HUB_USERNAME") {
		t.Errorf("Expected missing username error, got: %v", err)
	}
}

func TestListAvailableModels_HubError(t *testing.T) {
	boom := errors.New("offline")
	err := NewLister(&stubHub{err: boom}, &bytes.Buffer{}).ListAvailableModels(context.Background(), "galsen")
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestListAvailableModels_InferenceServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"galsen/wolofToFrenchTranslator_nllb","object":"model"}]}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	lister := NewLister(&stubHub{}, &out).WithInferenceServer(server.URL+"/v1", "")
	if err := lister.ListAvailableModels(context.Background(), "galsen"); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}
	if !strings.Contains(out.String(), "Served by the inference server:\n  galsen/wolofToFrenchTranslator_nllb") {
		t.Errorf("unexpected listing:\n%s", out.String())
	}
}
