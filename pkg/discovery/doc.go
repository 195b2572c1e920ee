/*
Package discovery runs the generate, filter, probe and report cycle that
turns a trained Markov table into a live feed of unregistered domain names.

A Loop owns one Sampler, one Filter and one Prober for the lifetime of a run.
It handles a single candidate at a time: the next word is only generated
once the previous one has been rejected or probed and reported, so events
reach the Sink in exactly the order the registry was queried.

Steady-state failures never stop a run. Rejected candidates, taken names,
rate limits and transport errors are all reported (or suppressed) as
outcomes, and the loop moves on to a fresh candidate. Run only returns when
its context ends or the candidate supply is exhausted.
*/
package discovery
