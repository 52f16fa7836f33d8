/*
Package resilience provides a circuit breaker for failing fast.

The supervisor wraps worker process spawning in a breaker: when workers
repeatedly die without producing output (a broken binary, fork failures,
resource exhaustion), the breaker opens and runs are refused immediately for
a cooldown instead of forking more doomed children. After the cooldown a
single probe run is admitted; its outcome decides whether the breaker closes
or re-opens.

Guest-level outcomes are not failures here. A program that raises, exceeds
the step ceiling or times out still produced a well-formed result, so only
the silent-death path counts against the breaker.
*/
package resilience
