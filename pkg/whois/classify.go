package whois

import (
	"fmt"
	"strings"
)

// Status is the classified outcome of a single lookup.
type Status int

const (
	// Indeterminate means the lookup failed or the reply was empty. It says
	// nothing about whether the domain is registered.
	Indeterminate Status = iota
	Available
	Taken
	RateLimited
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Taken:
		return "taken"
	case RateLimited:
		return "rate_limited"
	default:
		return "indeterminate"
	}
}

// Classifier maps a raw registry reply for domain to a Status. It must be a
// pure function of its arguments.
type Classifier interface {
	Classify(domain, raw string) Status
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(domain, raw string) Status

func (f ClassifierFunc) Classify(domain, raw string) Status {
	return f(domain, raw)
}

// PhraseClassifier classifies replies by case-sensitive substring matching.
type PhraseClassifier struct {
	// RateLimitPhrases mark a reply as RateLimited. They are checked first.
	RateLimitPhrases []string
	// NoMatchFormat is a fmt format with a single %s verb that receives the
	// uppercased domain. A reply containing the result is Available.
	NoMatchFormat string
	// NoMatchLines mark a reply as Available when one of its lines, with
	// surrounding space removed, starts with any of them. They cover registries
	// that do not echo the domain.
	NoMatchLines []string
}

// DefaultClassifier returns a PhraseClassifier for the Verisign com/net
// registry and the not-found replies of the common ccTLD and new gTLD
// registries.
func DefaultClassifier() *PhraseClassifier {
	return &PhraseClassifier{
		RateLimitPhrases: []string{
			"IP Address Has Reached Rate Limit",
			"Exceeded max command rate",
			"Too many queries from your IP",
		},
		NoMatchFormat: `No match for domain "%s"`,
		NoMatchLines: []string{
			"Domain not found.",
			"NOT FOUND",
			"No Data Found",
			"No entries found",
			"The queried object does not exist",
			"Status: free",
		},
	}
}

// Classify implements Classifier. An empty reply is Indeterminate and any
// other reply that is neither rate limited nor a no-match is Taken.
func (c *PhraseClassifier) Classify(domain, raw string) Status {
	if strings.TrimSpace(raw) == "" {
		return Indeterminate
	}
	for _, phrase := range c.RateLimitPhrases {
		if strings.Contains(raw, phrase) {
			return RateLimited
		}
	}
	if c.NoMatchFormat != "" && strings.Contains(raw, fmt.Sprintf(c.NoMatchFormat, strings.ToUpper(domain))) {
		return Available
	}
	if len(c.NoMatchLines) > 0 {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			for _, prefix := range c.NoMatchLines {
				if strings.HasPrefix(line, prefix) {
					return Available
				}
			}
		}
	}
	return Taken
}
