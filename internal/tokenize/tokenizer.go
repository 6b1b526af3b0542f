// Package tokenize converts text to token ids and back using a Hugging Face
// tokenizer.json.
package tokenize

import "fmt"

// LabelPadTokenID marks label positions excluded from the loss.
const LabelPadTokenID = -100

// Tokenizer converts text into token IDs and back.
type Tokenizer interface {
	// Encode returns token ids with special tokens added. When maxLength is
	// positive the sequence is truncated to at most maxLength ids, keeping
	// the trailing end-of-sequence token.
	Encode(text string, maxLength int) ([]int, error)

	// Decode converts ids back to text, dropping special tokens when
	// skipSpecial is set.
	Decode(ids []int, skipSpecial bool) (string, error)

	// PadTokenID returns the padding id.
	PadTokenID() int
}

// DecodeBatch decodes every sequence in batch.
func DecodeBatch(t Tokenizer, batch [][]int, skipSpecial bool) ([]string, error) {
	out := make([]string, len(batch))
	for i, ids := range batch {
		text, err := t.Decode(ids, skipSpecial)
		if err != nil {
			return nil, fmt.Errorf("failed to decode sequence %d: %w", i, err)
		}
		out[i] = text
	}
	return out, nil
}

// ReplaceLabelPadding returns a copy of ids with every LabelPadTokenID
// replaced by padID.
func ReplaceLabelPadding(ids []int, padID int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		if id == LabelPadTokenID {
			out[i] = padID
		} else {
			out[i] = id
		}
	}
	return out
}

// Truncate shortens ids to maxLength, keeping the final id when it is the
// end-of-sequence marker.
func Truncate(ids []int, maxLength, eosID int) []int {
	if maxLength <= 0 || len(ids) <= maxLength {
		return ids
	}
	last := ids[len(ids)-1]
	out := append([]int(nil), ids[:maxLength]...)
	if last == eosID {
		out[maxLength-1] = eosID
	}
	return out
}
