package evaluate

import (
	"math"
	"regexp"
	"strings"
)

const maxNgramOrder = 4

// Tokenization rules of the 13a tokenizer used by sacreBLEU.
var tokenizerRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`([\{-\~\[-\x60 -\&\(-\+\:-\@\/])`), " ${1} "},
	{regexp.MustCompile(`([^0-9])([\.,])`), "${1} ${2} "},
	{regexp.MustCompile(`([\.,])([^0-9])`), " ${1} ${2}"},
	{regexp.MustCompile(`([0-9])(-)`), "${1} ${2} "},
}

// Tokenize13a splits a line the way sacreBLEU's default tokenizer does.
func Tokenize13a(line string) []string {
	line = strings.ReplaceAll(line, "<skipped>", "")
	line = strings.ReplaceAll(line, "-\n", "")
	line = strings.ReplaceAll(line, "\n", " ")
	if strings.Contains(line, "&") {
		line = strings.ReplaceAll(line, "&quot;", `"`)
		line = strings.ReplaceAll(line, "&amp;", "&")
		line = strings.ReplaceAll(line, "&lt;", "<")
		line = strings.ReplaceAll(line, "&gt;", ">")
	}

	line = " " + line + " "
	for _, rule := range tokenizerRules {
		line = rule.re.ReplaceAllString(line, rule.repl)
	}
	return strings.Fields(line)
}

// BLEUStats accumulates corpus-level n-gram statistics.
type BLEUStats struct {
	Correct [maxNgramOrder]int
	Total   [maxNgramOrder]int
	SysLen  int
	RefLen  int
}

// CorpusBLEU computes a 0-100 corpus BLEU score with exponential smoothing.
// Each hypothesis is scored against all of its references. N-gram orders
// the corpus is too short to contain are left out of the geometric mean.
func CorpusBLEU(hypotheses []string, references [][]string) float64 {
	return CollectStats(hypotheses, references).Score()
}

// CollectStats gathers clipped n-gram matches for every hypothesis.
func CollectStats(hypotheses []string, references [][]string) BLEUStats {
	var stats BLEUStats
	for i, hyp := range hypotheses {
		var refs []string
		if i < len(references) {
			refs = references[i]
		}
		hypTokens := Tokenize13a(hyp)

		refLens := make([]int, 0, len(refs))
		maxRefCounts := make(map[string]int)
		for _, ref := range refs {
			refTokens := Tokenize13a(ref)
			refLens = append(refLens, len(refTokens))
			for ngram, count := range countNgrams(refTokens) {
				if count > maxRefCounts[ngram] {
					maxRefCounts[ngram] = count
				}
			}
		}

		stats.SysLen += len(hypTokens)
		stats.RefLen += closestRefLen(len(hypTokens), refLens)

		for ngram, count := range countNgrams(hypTokens) {
			order := strings.Count(ngram, "\x00")
			stats.Correct[order] += min(count, maxRefCounts[ngram])
		}
		for n := 1; n <= maxNgramOrder; n++ {
			stats.Total[n-1] += max(0, len(hypTokens)-n+1)
		}
	}
	return stats
}

// Score turns the statistics into a BLEU score.
func (s BLEUStats) Score() float64 {
	var precisions [maxNgramOrder]float64
	smooth := 1.0
	effectiveOrder := 0

	for n := 0; n < maxNgramOrder; n++ {
		if s.Total[n] == 0 {
			break
		}
		effectiveOrder = n + 1
		if s.Correct[n] == 0 {
			smooth *= 2
			precisions[n] = 100 / (smooth * float64(s.Total[n]))
		} else {
			precisions[n] = 100 * float64(s.Correct[n]) / float64(s.Total[n])
		}
	}
	if effectiveOrder == 0 {
		return 0
	}

	bp := 1.0
	if s.SysLen < s.RefLen {
		if s.SysLen == 0 {
			return 0
		}
		bp = math.Exp(1 - float64(s.RefLen)/float64(s.SysLen))
	}

	var logSum float64
	for _, p := range precisions[:effectiveOrder] {
		logSum += math.Log(p)
	}
	return bp * math.Exp(logSum/float64(effectiveOrder))
}

// countNgrams counts n-grams of order 1..4; tokens are joined with NUL so
// the order can be recovered from the key.
func countNgrams(tokens []string) map[string]int {
	counts := make(map[string]int)
	for n := 1; n <= maxNgramOrder; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+n], "\x00")]++
		}
	}
	return counts
}

// closestRefLen picks the reference length nearest to hypLen, preferring
// the shorter one on ties.
func closestRefLen(hypLen int, refLens []int) int {
	best := -1
	for _, l := range refLens {
		if best < 0 {
			best = l
			continue
		}
		d, bd := abs(l-hypLen), abs(best-hypLen)
		if d < bd || (d == bd && l < best) {
			best = l
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
