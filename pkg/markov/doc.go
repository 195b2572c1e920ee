/*
Package markov provides a character-level Markov chain toolkit for producing
novel, dictionary-like words.

A Lexicon normalizes a training word list into a fixed alphabet. Build turns
it into a read-only transition Table of a given order, and a Sampler draws
words from that table under length, duplicate and attempt constraints. Tables
can be persisted to SQLite through a Store, or moved around as JSON.

A Table is safe for concurrent use. A Sampler is not: it owns the random
source and the run's duplicate history.
*/
package markov
