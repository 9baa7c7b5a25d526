package djia

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

func TestClientOpening_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, "12345.67\n")
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	opening, err := c.Opening(context.Background(), time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "/2024/1/10", gotPath, "month and day are not zero-padded")
	assert.Equal(t, "12345.67", opening.Raw)
	assert.Equal(t, 12345.67, opening.Value)
}

func TestClientOpening_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "error: data not available yet\n")
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Opening(context.Background(), time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotErrorIs(t, err, errTransient)
}

func TestClientOpening_MalformedPayload(t *testing.T) {
	for _, payload := range []string{"bogus", "NaN", "+Inf", ""} {
		t.Run("payload "+payload, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, payload)
			}))
			defer srv.Close()

			c := testClient(srv.URL)
			_, err := c.Opening(context.Background(), time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrDataUnavailable)
			assert.NotErrorIs(t, err, errTransient)
			assert.Contains(t, err.Error(), "malformed")
		})
	}
}

func TestClientOpening_UpstreamStatusIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Opening(context.Background(), time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, errTransient)
}

func TestClientOpening_ConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := testClient(url)
	_, err := c.Opening(context.Background(), time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, errTransient)
}
