package translation

import "context"

// Request is one generation call.
type Request struct {
	Model     string
	Prompt    string
	InputIDs  []int
	MaxLength int
	NumBeams  int
}

// Generation is the model output. Generators that run on token ids set
// TokenIDs; text generators set Text.
type Generation struct {
	Text     string
	TokenIDs []int
}

// Generator runs the sequence-to-sequence model.
type Generator interface {
	Generate(ctx context.Context, req Request) (Generation, error)
}
