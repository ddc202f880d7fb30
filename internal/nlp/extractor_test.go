package nlp

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeEngine struct {
	tokens   []Token
	err      error
	lastText string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Analyze(text string) ([]Token, error) {
	f.lastText = text
	return f.tokens, f.err
}

func TestExtractorKeepsNonStopNouns(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{
		{Text: "Cloud", Lemma: "cloud", POS: POSNoun},
		{Text: "platforms", Lemma: "platform", POS: POSNoun},
		{Text: "AWS", Lemma: "aws", POS: POSProperNoun},
		{Text: "run", Lemma: "run", POS: POSOther},
		{Text: "thing", Lemma: "thing", POS: POSNoun, Stop: true},
		{Text: "e-mail", Lemma: "e-mail", POS: POSNoun},
		{Text: "-", Lemma: "-", POS: POSNoun},
		{Text: "cloud", Lemma: "cloud", POS: POSNoun},
	}}

	extractor := NewExtractor(engine, zap.NewNop())
	got := extractor.Extract("  Cloud PLATFORMS on AWS  ")

	want := []string{"aws", "cloud", "e mail", "platform"}
	if !reflect.DeepEqual(got.Sorted(), want) {
		t.Fatalf("unexpected keywords: got %v, want %v", got.Sorted(), want)
	}

	if engine.lastText != "cloud platforms on aws" {
		t.Fatalf("expected lower-cased trimmed text, got %q", engine.lastText)
	}
}

func TestExtractorEmptyText(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{{Lemma: "cloud", POS: POSNoun}}}
	extractor := NewExtractor(engine, nil)

	if got := extractor.Extract("   "); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got.Sorted())
	}
	if engine.lastText != "" {
		t.Fatalf("engine should not be called for blank input")
	}
}

func TestExtractorAnalyzeErrorDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	engine := &fakeEngine{err: errors.New("tagger exploded")}

	got := NewExtractor(engine, zap.New(core)).Extract("cloud software")
	if len(got) != 0 {
		t.Fatalf("expected empty set on failure, got %v", got.Sorted())
	}

	entries := logs.FilterMessage("keyword extraction failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["engine"] != "fake" {
		t.Fatalf("expected engine field, got %v", entries[0].ContextMap())
	}
}

func TestBlankEngineYieldsNothing(t *testing.T) {
	extractor := NewExtractor(NewBlank(), nil)

	if got := extractor.Extract("Cloud software platform for AI automation"); len(got) != 0 {
		t.Fatalf("blank engine should not produce keywords, got %v", got.Sorted())
	}
	if extractor.EngineName() != KindBlank {
		t.Fatalf("unexpected engine name %q", extractor.EngineName())
	}
}

func TestFullEngineExtractsNouns(t *testing.T) {
	engine, err := NewFull()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := NewExtractor(engine, nil).Extract("AI consulting on AWS for the cloud")
	for _, want := range []string{"ai", "aws", "cloud"} {
		if !got.Has(want) {
			t.Fatalf("expected %q to keep its surface form, got %v", want, got.Sorted())
		}
	}
	for _, unwanted := range []string{"be", "aw", "for", "the"} {
		if got.Has(unwanted) {
			t.Fatalf("unexpected keyword %q in %v", unwanted, got.Sorted())
		}
	}
}

func TestFullEngineLemma(t *testing.T) {
	engine, err := NewFull()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	full := engine.(*fullEngine)

	tests := []struct {
		word string
		tag  string
		want string
	}{
		{word: "platforms", tag: "NNS", want: "platform"},
		{word: "models", tag: "NNS", want: "model"},
		{word: "aws", tag: "NNS", want: "aws"},
		{word: "ai", tag: "NN", want: "ai"},
		{word: "learning", tag: "NN", want: "learning"},
		{word: "azure", tag: "NNP", want: "azure"},
		{word: "clouds", tag: "NNPS", want: "clouds"},
	}

	for _, tt := range tests {
		if got := full.lemma(tt.word, tt.tag); got != tt.want {
			t.Fatalf("lemma(%q, %s) = %q, want %q", tt.word, tt.tag, got, tt.want)
		}
	}
}

func TestExtractorTerms(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{
		{Text: "learning", Lemma: "learning", POS: POSOther},
		{Text: "models", Lemma: "model", POS: POSOther},
		{Text: "running", Lemma: "running", POS: POSOther},
	}}

	got := NewExtractor(engine, nil, WithTerms(" Learning ", "model")).Extract("learning models running")
	want := []string{"learning", "model"}
	if !reflect.DeepEqual(got.Sorted(), want) {
		t.Fatalf("got %v, want %v", got.Sorted(), want)
	}
}

func TestBlankEngineIgnoresTerms(t *testing.T) {
	got := NewExtractor(NewBlank(), nil, WithTerms("cloud", "ai")).Extract("cloud ai")
	if len(got) != 0 {
		t.Fatalf("blank engine should not produce keywords, got %v", got.Sorted())
	}
}

func TestLoad(t *testing.T) {
	cases := map[string]string{
		"blank":   KindBlank,
		" BLANK ": KindBlank,
		"full":    KindFull,
		"":        KindFull,
		"spacy":   KindFull,
	}

	for kind, want := range cases {
		if got := Load(kind, nil).Name(); got != want {
			t.Fatalf("Load(%q): got %q, want %q", kind, got, want)
		}
	}
}

func TestLazyLoadsOnce(t *testing.T) {
	var calls int32
	engine := Lazy(func() Engine {
		atomic.AddInt32(&calls, 1)
		return &fakeEngine{}
	})

	if calls != 0 {
		t.Fatalf("engine loaded before first use")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Analyze("cloud")
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
	if engine.Name() != "fake" {
		t.Fatalf("unexpected engine name %q", engine.Name())
	}
}

func TestLazyNilFallsBackToBlank(t *testing.T) {
	engine := Lazy(func() Engine { return nil })
	if engine.Name() != KindBlank {
		t.Fatalf("expected blank engine, got %q", engine.Name())
	}
}

func TestStopWords(t *testing.T) {
	words := stopWords()
	for _, w := range []string{"the", "for", "and"} {
		if _, ok := words[w]; !ok {
			t.Fatalf("expected %q to be a stop word", w)
		}
	}
	if _, ok := words["cloud"]; ok {
		t.Fatalf("cloud must not be a stop word")
	}
}
