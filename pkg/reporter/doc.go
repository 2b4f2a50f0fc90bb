/*
Package reporter implements the batched dispatch engine of the statsd client.

Formatted lines are admitted into a bounded queue by Enqueue, in the caller's goroutine. A fixed
pool of workers drains the queue, each into its own local batch, and flushes the batch as one
datagram when it reaches the flush threshold or when the queue is observed empty:

	producers -> Enqueue -> queue -> worker 1..N -> local batch -> flush -> Socket

The queue and the flush threshold are sized independently. A queue depth equal to the flush
threshold reproduces the behaviour of older clients which dropped lines as soon as one full
batch was waiting.

Every failure is local: lines rejected by the queue are counted and reported through a
throttled warning, send errors are counted and logged, and nothing is ever retried or requeued.
A line admitted by Enqueue is attempted in exactly one datagram, including when the reporter
is shutting down: workers drain the queue and flush their partial batches before Run returns.
*/
package reporter
