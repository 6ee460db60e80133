package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateWithBodyDecodesArray(t *testing.T) {
	var gotMethod, gotContentType, gotRequestID string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"a": 1}, {"a": 2}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	list, err := client.CreateWithBody(context.Background(), "/node/1/traverse/node", map[string]any{"order": "breadth_first"})
	require.NoError(t, err)

	require.Len(t, list, 2)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/json", gotContentType)
	require.NotEmpty(t, gotRequestID)
	require.JSONEq(t, `{"order": "breadth_first"}`, string(gotBody))
}

func TestCreateWithBodyReportsUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "node 99 not found", "exception": "NodeNotFoundException"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.CreateWithBody(context.Background(), "/node/99/traverse/node", map[string]any{})
	require.Error(t, err)

	var statusErr *UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Equal(t, "/node/99/traverse/node", statusErr.Path)
	require.Equal(t, "node 99 not found", statusErr.Message)
}

func TestCreateWithBodyAndHeadersExposesLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "http://example/db/data/node/5/page1")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	list, headers, err := client.CreateWithBodyAndHeaders(context.Background(), "/node/5/paged/traverse/node", map[string]any{})
	require.NoError(t, err)
	require.Empty(t, list)
	require.Equal(t, "http://example/db/data/node/5/page1", headers.Get("Location"))
}

func TestRetrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/ok":
			_, _ = w.Write([]byte(`[{"a": 1}]`))
		case "/page/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/page/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithBackoffMaxElapsed(100*time.Millisecond))
	require.NoError(t, err)

	list, ok, err := client.Retrieve(context.Background(), "/page/ok")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, list, 1)

	// 204 signals no further data, not an error.
	_, ok, err = client.Retrieve(context.Background(), "/page/empty")
	require.NoError(t, err)
	require.False(t, ok)

	// A gone page cursor does too: the lease expired server-side.
	_, ok, err = client.Retrieve(context.Background(), "/page/gone")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = client.Retrieve(context.Background(), "/page/boom")
	require.Error(t, err)

	var statusErr *UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestHTTPErrorStatusIsNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithBackoffMaxElapsed(100*time.Millisecond))
	require.NoError(t, err)

	_, err = client.CreateWithBody(context.Background(), "/node/1/traverse/node", map[string]any{})
	require.Error(t, err)
	require.Equal(t, 1, requests)
}

func TestMalformedResponseBodyFailsDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.CreateWithBody(context.Background(), "/node/1/traverse/node", map[string]any{})
	require.Error(t, err)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("http://exa mple\x7f")
	require.Error(t, err)
}

func TestResolveJoinsBaseAndPath(t *testing.T) {
	client, err := NewClient("http://localhost:7474/db/data/")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:7474/db/data/node/1", client.resolve("/node/1"))
	require.Equal(t, "http://localhost:7474/db/data/node/1", client.resolve("node/1"))
}

func TestRetrieveDecodesElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["a", "b"]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	list, ok, err := client.Retrieve(context.Background(), "/x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []json.RawMessage{json.RawMessage(`"a"`), json.RawMessage(`"b"`)}, list)
}
