package poller

import "context"

// Message is one opaque payload returned by a Fetcher.
type Message struct {
	Attributes map[string]string
	ID         string
	Body       []byte
}

// Fetcher produces the next batch of messages. An empty batch is not an error.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Message, error)
}

// Processor handles a single message. Errors are per message and never stop the loop.
type Processor interface {
	Process(ctx context.Context, msg Message) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]Message, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]Message, error) {
	return f(ctx)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, msg Message) error

func (f ProcessorFunc) Process(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
