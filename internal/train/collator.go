package train

import (
	"github.com/galsenai/french-wolof-translator/internal/dataset"
	"github.com/galsenai/french-wolof-translator/internal/tokenize"
)

// Batch is a padded group of examples.
type Batch struct {
	InputIDs      [][]int `json:"input_ids"`
	AttentionMask [][]int `json:"attention_mask"`
	Labels        [][]int `json:"labels"`
}

// Collator pads examples to the longest sequence of their batch. Inputs are
// padded with PadTokenID, attention masks with 0 and labels with
// LabelPadTokenID so padded positions are ignored by the loss.
type Collator struct {
	PadTokenID      int
	LabelPadTokenID int
	PadToMultipleOf int
}

// NewCollator returns a collator padding inputs with padID.
func NewCollator(padID int) *Collator {
	return &Collator{PadTokenID: padID, LabelPadTokenID: tokenize.LabelPadTokenID}
}

// Collate pads examples into one batch.
func (c *Collator) Collate(examples []dataset.Example) Batch {
	inputLen, labelLen := 0, 0
	for _, ex := range examples {
		if len(ex.InputIDs) > inputLen {
			inputLen = len(ex.InputIDs)
		}
		if len(ex.Labels) > labelLen {
			labelLen = len(ex.Labels)
		}
	}
	inputLen = c.roundUp(inputLen)
	labelLen = c.roundUp(labelLen)

	b := Batch{
		InputIDs:      make([][]int, len(examples)),
		AttentionMask: make([][]int, len(examples)),
		Labels:        make([][]int, len(examples)),
	}
	for i, ex := range examples {
		mask := ex.AttentionMask
		if len(mask) != len(ex.InputIDs) {
			mask = ones(len(ex.InputIDs))
		}
		b.InputIDs[i] = pad(ex.InputIDs, inputLen, c.PadTokenID)
		b.AttentionMask[i] = pad(mask, inputLen, 0)
		b.Labels[i] = pad(ex.Labels, labelLen, c.LabelPadTokenID)
	}
	return b
}

// Batches splits examples into consecutive batches of at most size.
func (c *Collator) Batches(examples []dataset.Example, size int) []Batch {
	if size < 1 {
		size = 1
	}
	var out []Batch
	for start := 0; start < len(examples); start += size {
		end := start + size
		if end > len(examples) {
			end = len(examples)
		}
		out = append(out, c.Collate(examples[start:end]))
	}
	return out
}

func (c *Collator) roundUp(n int) int {
	m := c.PadToMultipleOf
	if m <= 1 || n%m == 0 {
		return n
	}
	return (n/m + 1) * m
}

func pad(ids []int, length, value int) []int {
	out := make([]int, length)
	copy(out, ids)
	for i := len(ids); i < length; i++ {
		out[i] = value
	}
	return out
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
