package scoring

import (
	"github.com/spigell/lead-assistant/internal/nlp"
	"go.uber.org/zap"
)

// Domain is a topical label with the keywords that signal it.
type Domain struct {
	Name     string
	Triggers []string
}

var domainTable = []Domain{
	{Name: "saas", Triggers: []string{"software", "platform", "cloud", "subscription"}},
	{Name: "ai", Triggers: []string{"ai", "automation", "nlp", "model", "learning"}},
	{Name: "cloud", Triggers: []string{"cloud", "aws", "azure", "infrastructure"}},
}

// Domains returns a copy of the domain keyword table in match order.
func Domains() []Domain {
	out := make([]Domain, len(domainTable))
	for i, d := range domainTable {
		out[i] = Domain{Name: d.Name, Triggers: append([]string(nil), d.Triggers...)}
	}
	return out
}

// Triggers returns every trigger word in the table, without duplicates.
func Triggers() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range domainTable {
		for _, t := range d.Triggers {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// NewExtractor returns a keyword extractor that always recognizes the
// trigger words as nouns.
func NewExtractor(engine nlp.Engine, logger *zap.Logger) *nlp.Extractor {
	return nlp.NewExtractor(engine, logger, nlp.WithTerms(Triggers()...))
}
