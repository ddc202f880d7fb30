package nlp

import "sync"

type lazyEngine struct {
	once   sync.Once
	load   func() Engine
	engine Engine
}

// Lazy defers building an engine until first use. Concurrent first callers
// share a single load.
func Lazy(load func() Engine) Engine {
	return &lazyEngine{load: load}
}

func (l *lazyEngine) get() Engine {
	l.once.Do(func() {
		l.engine = l.load()
		if l.engine == nil {
			l.engine = NewBlank()
		}
	})
	return l.engine
}

func (l *lazyEngine) Name() string { return l.get().Name() }

func (l *lazyEngine) Analyze(text string) ([]Token, error) {
	return l.get().Analyze(text)
}
