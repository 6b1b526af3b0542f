package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// GenerateRunName creates a unique directory name for a training run based on
// timestamp and checkpoint.
// Format: epochMillis_md5(checkpoint)[:8]
func GenerateRunName(checkpoint string) string {
	epochMillis := time.Now().UnixNano() / 1000000

	hash := md5.Sum([]byte(checkpoint))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

// SanitizeFilename creates a safe filename from a string. Repository ids keep
// their owner/name boundary as a double dash.
func SanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "--")

	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
