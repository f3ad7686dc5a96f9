package tokens

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/require"
)

func TestCountReportsLoadFailureOnce(t *testing.T) {
	loads := 0
	counter := newCounter(func(string) (*tiktoken.Tiktoken, error) {
		loads++
		return nil, errors.New("encoding unavailable")
	})

	_, err := counter.Count(context.Background(), "hello")
	require.Error(t, err)
	_, err = counter.Count(context.Background(), "again")
	require.Error(t, err)
	require.Equal(t, 1, loads)
}

func TestCountStopsWaitingWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	counter := newCounter(func(string) (*tiktoken.Tiktoken, error) {
		<-release
		return nil, errors.New("never loaded")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := counter.Count(ctx, "hello")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCountUsesEmbeddedEncodingOffline(t *testing.T) {
	// A proxy that accepts connections and never answers: any download would hang.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()
	t.Setenv("HTTPS_PROXY", "http://"+ln.Addr().String())
	t.Setenv("HTTP_PROXY", "http://"+ln.Addr().String())
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := NewCounter().Count(ctx, "hello world")
	require.NoError(t, err)
	require.Positive(t, n)
}
