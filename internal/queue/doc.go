// Package queue implements durable, retryable job queues, one per
// pipeline stage.
//
// Each stage owns two persistence files under the state directory:
// <stage>.pending.json for pending and in-flight jobs and
// <stage>.failed.json for dead-lettered jobs. Both are rewritten with
// write-new-then-rename semantics, so a crash never corrupts previously
// persisted state; at most the last unpersisted mutation is lost.
//
// # Processing
//
// Workers pull jobs under a bounded concurrency limit. A failing job is
// re-queued with exponential backoff until its retry budget is exhausted,
// then parked in the dead-letter set for inspection. Errors wrapped with
// Permanent (and validation failures) skip the retries and dead-letter
// immediately. Stages are fully isolated: exhaustion of one job never
// blocks or drops others.
//
//	q, err := queue.New("embed", stateDir, queue.Config{Workers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	q.Start(ctx, handleEmbedJob)
//	id, err := q.Enqueue(payload)
package queue
