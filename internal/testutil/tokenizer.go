package testutil

import (
	"fmt"
	"strings"

	"github.com/galsenai/french-wolof-translator/internal/tokenize"
)

// Special token ids of FakeTokenizer.
const (
	FakeBOSID = 0
	FakePadID = 1
	FakeEOSID = 2
	FakeUnkID = 3
)

var _ tokenize.Tokenizer = (*FakeTokenizer)(nil)

// FakeTokenizer is a whitespace word-level tokenizer. Words receive ids in
// order of first appearance, starting after the special tokens. Decoding a
// negative id fails.
type FakeTokenizer struct {
	vocab   map[string]int
	reverse []string
	Calls   int
}

// NewFakeTokenizer returns a tokenizer with only the special tokens known.
func NewFakeTokenizer() *FakeTokenizer {
	return &FakeTokenizer{
		vocab:   map[string]int{"<s>": FakeBOSID, "<pad>": FakePadID, "</s>": FakeEOSID, "<unk>": FakeUnkID},
		reverse: []string{"<s>", "<pad>", "</s>", "<unk>"},
	}
}

// Encode implements tokenize.Tokenizer.
func (f *FakeTokenizer) Encode(text string, maxLength int) ([]int, error) {
	f.Calls++
	var ids []int
	for _, word := range strings.Fields(text) {
		ids = append(ids, f.id(word))
	}
	ids = append(ids, FakeEOSID)
	return tokenize.Truncate(ids, maxLength, FakeEOSID), nil
}

// Decode implements tokenize.Tokenizer.
func (f *FakeTokenizer) Decode(ids []int, skipSpecial bool) (string, error) {
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			return "", fmt.Errorf("invalid token id %d", id)
		}
		if skipSpecial && id <= FakeUnkID {
			continue
		}
		if id >= len(f.reverse) {
			words = append(words, "<unk>")
			continue
		}
		words = append(words, f.reverse[id])
	}
	return strings.Join(words, " "), nil
}

// PadTokenID implements tokenize.Tokenizer.
func (f *FakeTokenizer) PadTokenID() int {
	return FakePadID
}

// IDs encodes text without truncation.
func (f *FakeTokenizer) IDs(text string) []int {
	ids, _ := f.Encode(text, 0)
	return ids
}

func (f *FakeTokenizer) id(word string) int {
	if id, ok := f.vocab[word]; ok {
		return id
	}
	id := len(f.reverse)
	f.vocab[word] = id
	f.reverse = append(f.reverse, word)
	return id
}
