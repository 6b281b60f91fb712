// Package events feeds sample events into the poll loop.
//
// A source implements poller.Fetcher and a processor implements
// poller.Processor:
//
//	src := events.NewRedisSource(client, cfg.Events.Queue, cfg.Events.BatchSize)
//	proc := events.NewSampleProcessor(svc, events.WithLogger(log))
//	p, err := poller.New(src, proc, poller.WithBackoff(initial, max))
//
// [NopSource] stands in when no queue is configured; it always returns an
// empty batch, so the loop just idles at the initial backoff.
//
// Events are JSON objects with a "type" field:
//
//	{"type":"sample.created","sample":{"required_uuid":"...","string_field":"...","required_jsonb":{}}}
//	{"type":"sample.deactivated","id":"..."}
//
// # Error Handling
//
// Per-message failures (bad JSON, unknown type, validation errors, missing
// samples) are returned from Process; the poller logs them and moves on.
// Fetch failures wrap [ErrFetchFailed] and make the poller back off.
package events
