package tokenize

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Special token names used by NLLB/Marian style vocabularies.
const (
	DefaultPadToken = "<pad>"
	DefaultEOSToken = "</s>"
)

// HFTokenizer wraps a HuggingFace-compatible tokenizer.json.
type HFTokenizer struct {
	inner *tokenizer.Tokenizer
	padID int
	eosID int
}

// NewHFTokenizer loads a tokenizer.json file using the pure-Go tokenizer.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	if path == "" {
		return nil, fmt.Errorf("tokenizer path is required")
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	padID, ok := tk.TokenToId(DefaultPadToken)
	if !ok {
		return nil, fmt.Errorf("tokenizer has no %s token", DefaultPadToken)
	}
	eosID, ok := tk.TokenToId(DefaultEOSToken)
	if !ok {
		eosID = -1
	}

	return &HFTokenizer{inner: tk, padID: padID, eosID: eosID}, nil
}

// Encode returns token IDs with special tokens enabled.
func (t *HFTokenizer) Encode(text string, maxLength int) ([]int, error) {
	if t == nil || t.inner == nil {
		return nil, fmt.Errorf("tokenizer is not initialized")
	}
	encoding, err := t.inner.EncodeSingle(text, true)
	if err != nil {
		return nil, err
	}
	ids := append([]int(nil), encoding.Ids...)
	return Truncate(ids, maxLength, t.eosID), nil
}

// Decode converts ids back to text.
func (t *HFTokenizer) Decode(ids []int, skipSpecial bool) (string, error) {
	if t == nil || t.inner == nil {
		return "", fmt.Errorf("tokenizer is not initialized")
	}
	for _, id := range ids {
		if id < 0 {
			return "", fmt.Errorf("invalid token id %d", id)
		}
	}
	return t.inner.Decode(ids, skipSpecial), nil
}

// PadTokenID returns the id of the <pad> token.
func (t *HFTokenizer) PadTokenID() int {
	return t.padID
}
