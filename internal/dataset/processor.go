package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/galsenai/french-wolof-translator/internal/config"
	"github.com/galsenai/french-wolof-translator/internal/tokenize"
)

// Processor turns the raw corpus into tokenized train and test partitions.
type Processor struct {
	tokenizer tokenize.Tokenizer
	source    Source
	dataset   config.DatasetConfig
	model     config.ModelConfig
	logger    *zap.SugaredLogger
}

// NewProcessor creates a processor. A nil logger discards output.
func NewProcessor(tk tokenize.Tokenizer, src Source, datasetCfg config.DatasetConfig,
	modelCfg config.ModelConfig, logger *zap.SugaredLogger) *Processor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Processor{
		tokenizer: tk,
		source:    src,
		dataset:   datasetCfg,
		model:     modelCfg,
		logger:    logger,
	}
}

// Load fetches the configured dataset.
func (p *Processor) Load(ctx context.Context) (DatasetDict, error) {
	p.logger.Infow("loading dataset", "name", p.dataset.DatasetName)
	dict, err := p.source.Load(ctx, p.dataset.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", p.dataset.DatasetName, err)
	}
	return dict, nil
}

// Split partitions the "train" split into "train" and "test". The test
// partition holds ceil(N * TestSize) records chosen by a shuffle seeded
// with the configured seed.
func (p *Processor) Split(dict DatasetDict) (DatasetDict, error) {
	records, ok := dict[SplitTrain]
	if !ok {
		return nil, fmt.Errorf("%w: dataset has no %q split", ErrInvalidSplit, SplitTrain)
	}

	f := p.dataset.TestSize
	if math.IsNaN(f) || f <= 0 || f >= 1 {
		return nil, fmt.Errorf("%w: test size %v must be in (0, 1)", ErrInvalidSplit, f)
	}

	n := len(records)
	nTest := int(math.Ceil(float64(n) * f))
	nTrain := n - nTest
	if nTest <= 0 || nTrain <= 0 {
		return nil, fmt.Errorf("%w: %d records cannot be split with test size %v", ErrInvalidSplit, n, f)
	}

	perm := rand.New(rand.NewSource(p.dataset.Seed)).Perm(n)
	test := make([]Record, 0, nTest)
	train := make([]Record, 0, nTrain)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, records[idx])
		} else {
			train = append(train, records[idx])
		}
	}

	p.logger.Infow("split dataset", "train", nTrain, "test", nTest, "seed", p.dataset.Seed)
	return DatasetDict{SplitTrain: train, SplitTest: test}, nil
}

// Preprocess tokenizes one record in the French to Wolof direction.
func (p *Processor) Preprocess(r Record) (Example, error) {
	return p.encode(r, p.dataset.PrefixFrToWo, p.model.SourceLang, p.model.TargetLang)
}

// PreprocessAll tokenizes one record into every configured direction. The
// Wolof to French example is only produced when Bidirectional is set.
func (p *Processor) PreprocessAll(r Record) ([]Example, error) {
	ex, err := p.Preprocess(r)
	if err != nil {
		return nil, err
	}
	examples := []Example{ex}
	if !p.dataset.Bidirectional {
		return examples, nil
	}

	rev, err := p.encode(r, p.dataset.PrefixWoToFr, p.model.TargetLang, p.model.SourceLang)
	if err != nil {
		return nil, err
	}
	return append(examples, rev), nil
}

func (p *Processor) encode(r Record, prefix, srcCol, tgtCol string) (Example, error) {
	src, ok := r[srcCol]
	if !ok {
		return Example{}, fmt.Errorf("record has no %q column", srcCol)
	}
	tgt, ok := r[tgtCol]
	if !ok {
		return Example{}, fmt.Errorf("record has no %q column", tgtCol)
	}

	inputIDs, err := p.tokenizer.Encode(prefix+src, p.model.MaxLength)
	if err != nil {
		return Example{}, fmt.Errorf("failed to tokenize input: %w", err)
	}
	labels, err := p.tokenizer.Encode(tgt, p.model.MaxLength)
	if err != nil {
		return Example{}, fmt.Errorf("failed to tokenize target: %w", err)
	}

	mask := make([]int, len(inputIDs))
	for i := range mask {
		mask[i] = 1
	}
	return Example{InputIDs: inputIDs, AttentionMask: mask, Labels: labels}, nil
}

// PreprocessDict tokenizes every split. One failing record fails the call.
func (p *Processor) PreprocessDict(dict DatasetDict) (TokenizedDict, error) {
	names := make([]string, 0, len(dict))
	for name := range dict {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(TokenizedDict, len(dict))
	for _, name := range names {
		examples := make([]Example, 0, len(dict[name]))
		for i, r := range dict[name] {
			exs, err := p.PreprocessAll(r)
			if err != nil {
				return nil, fmt.Errorf("split %s record %d: %w", name, i, err)
			}
			examples = append(examples, exs...)
		}
		out[name] = examples
	}
	return out, nil
}

// Prepare loads, splits and tokenizes the dataset.
func (p *Processor) Prepare(ctx context.Context) (TokenizedDict, error) {
	dict, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	split, err := p.Split(dict)
	if err != nil {
		return nil, err
	}
	tokenized, err := p.PreprocessDict(split)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess dataset: %w", err)
	}
	p.logger.Infow("prepared dataset",
		"train_examples", len(tokenized[SplitTrain]),
		"test_examples", len(tokenized[SplitTest]))
	return tokenized, nil
}
