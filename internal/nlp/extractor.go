package nlp

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeywordSet is a deduplicated set of normalized terms.
type KeywordSet map[string]struct{}

// Has reports whether the term is present.
func (s KeywordSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Sorted returns the terms in lexical order.
func (s KeywordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for term := range s {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Extractor pulls noun keywords out of text using an Engine.
type Extractor struct {
	engine Engine
	logger *zap.Logger
	terms  KeywordSet
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithTerms registers known nouns. A tagged token whose text or lemma is a
// registered term is kept even when the tagger labels it otherwise. Untagged
// tokens from the blank engine are never matched.
func WithTerms(terms ...string) ExtractorOption {
	return func(e *Extractor) {
		for _, term := range terms {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
				e.terms[term] = struct{}{}
			}
		}
	}
}

// NewExtractor returns an Extractor backed by engine, or by the blank
// engine when engine is nil.
func NewExtractor(engine Engine, logger *zap.Logger, opts ...ExtractorOption) *Extractor {
	if engine == nil {
		engine = NewBlank()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{engine: engine, logger: logger, terms: make(KeywordSet)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineName reports which engine backs the extractor.
func (e *Extractor) EngineName() string { return e.engine.Name() }

// Extract returns the lemmas of every non-stop-word noun in text. Analysis
// failures are logged and produce an empty set.
func (e *Extractor) Extract(text string) KeywordSet {
	keywords := make(KeywordSet)

	text = strings.TrimSpace(text)
	if text == "" {
		return keywords
	}

	tokens, err := e.engine.Analyze(cases.Lower(language.English).String(text))
	if err != nil {
		e.logger.Warn("keyword extraction failed", zap.String("engine", e.engine.Name()), zap.Error(err))
		return keywords
	}

	for _, tok := range tokens {
		if term, ok := e.knownTerm(tok); ok {
			keywords[term] = struct{}{}
			continue
		}

		if tok.Stop || (tok.POS != POSNoun && tok.POS != POSProperNoun) {
			continue
		}

		lemma := strings.TrimSpace(strings.ReplaceAll(tok.Lemma, "-", " "))
		if lemma == "" {
			continue
		}
		keywords[lemma] = struct{}{}
	}

	return keywords
}

func (e *Extractor) knownTerm(tok Token) (string, bool) {
	if len(e.terms) == 0 || tok.POS == "" {
		return "", false
	}
	if lemma := strings.ToLower(tok.Lemma); e.terms.Has(lemma) {
		return lemma, true
	}
	if text := strings.ToLower(tok.Text); e.terms.Has(text) {
		return text, true
	}
	return "", false
}
