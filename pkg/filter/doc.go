/*
Package filter holds the cheap, pure checks a candidate name must pass before
any network lookup is spent on it.

A Filter measures the generated stem against length bounds and the full,
affixed name against a syllable bound. It has no side effects and depends on
neither time nor I/O, so it can be called as often as the generator produces
words. Duplicate avoidance is not its concern; the sampler owns that history.
*/
package filter
