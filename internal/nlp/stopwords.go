package nlp

import (
	"bufio"
	"strings"
	"sync"

	_ "embed"
)

//go:embed stopwords.txt
var stopWordList string

var (
	stopWordsOnce sync.Once
	stopWordSet   map[string]struct{}
)

// stopWords returns the shared English stop-word set. Callers must not mutate it.
func stopWords() map[string]struct{} {
	stopWordsOnce.Do(func() {
		stopWordSet = make(map[string]struct{})
		scanner := bufio.NewScanner(strings.NewReader(stopWordList))
		for scanner.Scan() {
			word := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			stopWordSet[word] = struct{}{}
		}
	})
	return stopWordSet
}
