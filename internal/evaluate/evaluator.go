// Package evaluate scores generated translations against reference labels.
package evaluate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/galsenai/french-wolof-translator/internal/tokenize"
)

// Metric keys reported by ComputeMetrics.
const (
	MetricBLEU   = "bleu"
	MetricGenLen = "gen_len"
)

// Metrics maps metric names to values.
type Metrics map[string]float64

// Predictions holds generated token ids. Backends may send either the id
// matrix itself or a tuple whose first element is the id matrix.
type Predictions struct {
	Sequences [][]int
}

// UnmarshalJSON accepts both the plain and the tuple encoding.
func (p *Predictions) UnmarshalJSON(data []byte) error {
	var flat [][]int
	if err := json.Unmarshal(data, &flat); err == nil {
		p.Sequences = flat
		return nil
	}

	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("predictions must be an id matrix or a tuple: %w", err)
	}
	if len(tuple) == 0 {
		p.Sequences = nil
		return nil
	}
	if err := json.Unmarshal(tuple[0], &p.Sequences); err != nil {
		return fmt.Errorf("first prediction element is not an id matrix: %w", err)
	}
	return nil
}

// MarshalJSON encodes the plain id matrix.
func (p Predictions) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Sequences)
}

// EvalPrediction is one generation pass over an evaluation split.
type EvalPrediction struct {
	Predictions Predictions `json:"predictions"`
	LabelIDs    [][]int     `json:"label_ids"`
}

// Evaluator decodes predictions and labels and computes translation metrics.
type Evaluator struct {
	tokenizer tokenize.Tokenizer
}

// NewEvaluator creates an evaluator decoding with tk.
func NewEvaluator(tk tokenize.Tokenizer) *Evaluator {
	return &Evaluator{tokenizer: tk}
}

// Postprocess trims predictions and wraps every trimmed label in a
// single-reference list.
func (e *Evaluator) Postprocess(preds, labels []string) ([]string, [][]string) {
	outPreds := make([]string, len(preds))
	for i, p := range preds {
		outPreds[i] = strings.TrimSpace(p)
	}
	outLabels := make([][]string, len(labels))
	for i, l := range labels {
		outLabels[i] = []string{strings.TrimSpace(l)}
	}
	return outPreds, outLabels
}

// ComputeMetrics returns BLEU and mean generation length, rounded to four
// decimals. Loss-mask sentinels are replaced by the padding id before any
// sequence is decoded.
func (e *Evaluator) ComputeMetrics(p EvalPrediction) (Metrics, error) {
	if e == nil || e.tokenizer == nil {
		return nil, fmt.Errorf("evaluator has no tokenizer")
	}
	padID := e.tokenizer.PadTokenID()

	preds := make([][]int, len(p.Predictions.Sequences))
	for i, ids := range p.Predictions.Sequences {
		preds[i] = tokenize.ReplaceLabelPadding(ids, padID)
	}
	labels := make([][]int, len(p.LabelIDs))
	for i, ids := range p.LabelIDs {
		labels[i] = tokenize.ReplaceLabelPadding(ids, padID)
	}

	decodedPreds, err := tokenize.DecodeBatch(e.tokenizer, preds, true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	decodedLabels, err := tokenize.DecodeBatch(e.tokenizer, labels, true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}

	hyps, refs := e.Postprocess(decodedPreds, decodedLabels)

	var genLen float64
	if len(preds) > 0 {
		total := 0
		for _, ids := range preds {
			for _, id := range ids {
				if id != padID {
					total++
				}
			}
		}
		genLen = float64(total) / float64(len(preds))
	}

	return Metrics{
		MetricBLEU:   round4(CorpusBLEU(hyps, refs)),
		MetricGenLen: round4(genLen),
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
