// Package nlp extracts normalized noun keywords from free text.
package nlp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// Universal part-of-speech labels assigned to tokens.
const (
	POSNoun       = "NOUN"
	POSProperNoun = "PROPN"
	POSOther      = "X"
)

// Engine kinds accepted by Load.
const (
	KindFull  = "full"
	KindBlank = "blank"
)

// Token is a single analyzed word.
type Token struct {
	Text  string
	Lemma string
	POS   string
	Stop  bool
}

// Engine tokenizes, tags and lemmatizes text.
type Engine interface {
	Name() string
	Analyze(text string) ([]Token, error)
}

// Load returns the requested engine. When the full engine cannot be built the
// blank engine is returned instead and a warning is logged.
func Load(kind string, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindBlank:
		logger.Info("using blank nlp engine")
		return NewBlank()
	case "", KindFull:
	default:
		logger.Warn("unknown nlp engine, using full", zap.String("engine", kind))
	}

	engine, err := NewFull()
	if err != nil {
		logger.Warn("full nlp engine unavailable, falling back to blank engine", zap.Error(err))
		return NewBlank()
	}

	logger.Info("nlp engine loaded", zap.String("engine", engine.Name()))
	return engine
}

type fullEngine struct {
	lemmatizer *golem.Lemmatizer
	stopWords  map[string]struct{}
}

// NewFull builds the tagging and lemmatizing engine.
func NewFull() (Engine, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}

	return &fullEngine{lemmatizer: lemmatizer, stopWords: stopWords()}, nil
}

func (e *fullEngine) Name() string { return KindFull }

func (e *fullEngine) Analyze(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		lower := strings.ToLower(tok.Text)
		_, stop := e.stopWords[lower]
		tokens = append(tokens, Token{
			Text:  tok.Text,
			Lemma: e.lemma(lower, tok.Tag),
			POS:   universalPOS(tok.Tag),
			Stop:  stop,
		})
	}

	return tokens, nil
}

// minLemmaRunes is the shortest plural the lemmatizer is trusted with.
// Shorter tokens are mostly acronyms ("aws", "ai") that golem folds into
// unrelated verbs.
const minLemmaRunes = 4

// lemma reduces common plural nouns only. Singular and proper nouns keep
// their surface form.
func (e *fullEngine) lemma(lower, tag string) string {
	if tag != "NNS" || utf8.RuneCountInString(lower) < minLemmaRunes {
		return lower
	}

	lemma := e.lemmatizer.LemmaLower(lower)
	if lemma == "" {
		return lower
	}
	return lemma
}

type blankEngine struct {
	stopWords map[string]struct{}
}

// NewBlank returns an engine that only tokenizes. Its tokens carry no tags,
// so keyword extraction over it yields nothing.
func NewBlank() Engine {
	return &blankEngine{stopWords: stopWords()}
}

func (e *blankEngine) Name() string { return KindBlank }

func (e *blankEngine) Analyze(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenize text: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		_, stop := e.stopWords[strings.ToLower(tok.Text)]
		tokens = append(tokens, Token{Text: tok.Text, Stop: stop})
	}

	return tokens, nil
}

// universalPOS maps Penn Treebank noun tags onto universal labels.
func universalPOS(tag string) string {
	switch tag {
	case "NN", "NNS":
		return POSNoun
	case "NNP", "NNPS":
		return POSProperNoun
	default:
		return POSOther
	}
}
