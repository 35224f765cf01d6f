package memory

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	return tk
}

// CountTokens measures text against the context budget. Falls back to a
// rune-based estimate if the encoding is unavailable.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc := getTokenizer()
	if enc == nil {
		return len([]rune(text))/4 + 1
	}
	return len(enc.Encode(text, nil, nil))
}
