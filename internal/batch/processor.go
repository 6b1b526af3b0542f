package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one sentence to translate.
type Entry struct {
	// Source is the language tag of Text, "fr" or "wo".
	Source string
	Text   string
	// Reference is an optional expected translation used for scoring.
	Reference string
}

// ReadBatchFile reads sentences from a file, one per line. Supported forms:
//   - "Bonjour" translated from defaultSource
//   - "wo: Naka nga def?" or "fr: Bonjour" with an explicit source
//   - "fr: Merci = Jërëjëf" with a reference translation
//
// Blank lines and lines starting with '#' are skipped.
func ReadBatchFile(filename, defaultSource string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Source: defaultSource}
		if tag, rest, ok := strings.Cut(line, ":"); ok {
			switch t := strings.ToLower(strings.TrimSpace(tag)); t {
			case "fr", "wo":
				entry.Source = t
				line = strings.TrimSpace(rest)
			}
		}

		if text, ref, ok := strings.Cut(line, "="); ok {
			entry.Text = strings.TrimSpace(text)
			entry.Reference = strings.TrimSpace(ref)
		} else {
			entry.Text = line
		}

		if entry.Text == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}
