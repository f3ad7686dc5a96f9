package googlefit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
)

const source = "derived:com.google.heart_rate.bpm:com.google.android.gms:merge_heart_rate_bpm"

func TestDatasetID(t *testing.T) {
	w := fitness.Window{StartMillis: 1719395200000, EndMillis: 1720000000000}
	require.Equal(t, "1719395200000000000-1720000000000000000", DatasetID(w))
}

func TestClientFetch(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"point":[{"startTimeNanos":"1720000000000000000","value":[{"fpVal":66}]}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	window := fitness.Window{StartMillis: 1, EndMillis: 2}

	series, err := client.Fetch(context.Background(), tokenSource("abc"), source, window, metric)
	require.NoError(t, err)
	require.Equal(t, "/dataSources/"+source+"/datasets/1000000-2000000", gotPath)
	require.Equal(t, "Bearer abc", gotAuth)
	require.Len(t, series.Samples, 1)
	require.Equal(t, 66.0, series.Samples[0].Value)
}

func TestClientFetchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient scope"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Fetch(context.Background(), tokenSource("abc"), source, fitness.Window{}, metric)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=403")
}

func TestClientFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Fetch(context.Background(), tokenSource("abc"), source, fitness.Window{}, metric)
	require.Error(t, err)
}

func tokenSource(access string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access, TokenType: "Bearer"})
}
