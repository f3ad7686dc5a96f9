package tokens

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const defaultEncoding = "cl100k_base"

var installLoader sync.Once

// Counter estimates prompt sizes with a BPE encoding. Gemini uses its own
// tokenizer, so counts are an approximation used only when the provider omits usage.
type Counter struct {
	encoding string
	load     func(string) (*tiktoken.Tiktoken, error)

	once sync.Once
	done chan struct{}
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter returns a lazily initialised counter. Encodings are read from the
// ranks embedded in the binary, never downloaded.
func NewCounter() *Counter {
	installLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	return newCounter(tiktoken.GetEncoding)
}

func newCounter(load func(string) (*tiktoken.Tiktoken, error)) *Counter {
	return &Counter{encoding: defaultEncoding, load: load, done: make(chan struct{})}
}

// Count returns the number of tokens in text. It gives up when ctx ends, even
// if the encoding is still loading.
func (c *Counter) Count(ctx context.Context, text string) (int, error) {
	c.once.Do(func() {
		go func() {
			defer close(c.done)
			c.enc, c.err = c.load(c.encoding)
		}()
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.done:
	}
	if c.err != nil {
		return 0, c.err
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}
