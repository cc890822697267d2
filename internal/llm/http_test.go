package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSON(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := SendJSON(context.Background(), srv.Client(), "fake", srv.URL, map[string]string{"hello": "world"},
		map[string]string{"Authorization": "Bearer k"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "application/json", gotType)
}

func TestSendJSON_StatusClassification(t *testing.T) {
	cases := map[int]ErrorKind{
		http.StatusTooManyRequests:     Transient,
		http.StatusServiceUnavailable:  Transient,
		http.StatusRequestTimeout:      Transient,
		http.StatusBadRequest:          Permanent,
		http.StatusUnauthorized:        Permanent,
		http.StatusInternalServerError: Transient,
	}
	for status, kind := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", status)
		}))
		_, err := SendJSON(context.Background(), srv.Client(), "fake", srv.URL, map[string]any{}, nil, nil)
		srv.Close()

		var pe *ProviderError
		require.True(t, errors.As(err, &pe), "status %d", status)
		assert.Equal(t, kind, pe.Kind, "status %d", status)
		assert.Equal(t, status, pe.StatusCode)
		assert.Equal(t, "fake", pe.Provider)
	}
}

func TestNewTransportError(t *testing.T) {
	assert.Equal(t, Permanent, NewTransportError("p", context.Canceled).Kind)
	assert.Equal(t, Transient, NewTransportError("p", context.DeadlineExceeded).Kind)
	assert.Equal(t, Permanent, NewTransportError("p", errors.New("weird")).Kind)
}
