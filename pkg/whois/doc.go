/*
Package whois checks whether a domain name is still unregistered.

A Client speaks the WHOIS protocol (RFC 3912) to a per-TLD registry server
through github.com/likexian/whois. Top-level domains without a configured
server are resolved once against the IANA root zone database; Client.Resolve
lets a caller fail before any lookup when a TLD has no registry. The raw reply is mapped to a Status by a Classifier; the default
PhraseClassifier matches the fixed phrases the Verisign registry uses. A Prober
combines the two with the pacing and cooldown the registries expect: it waits
a fixed delay between lookups and backs off for a penalty period whenever the
registry reports a rate limit.

A Prober is meant to be owned by a single worker and is not safe for
concurrent use.
*/
package whois
