package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Me(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":7,"email":"r@x.com","role":"restaurant","is_active":true}`))
		case "Bearer flaky":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	who, err := c.Me(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: 7, Email: "r@x.com", Role: "restaurant", IsActive: true}, who)

	_, err = c.Me(ctx, "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Me(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Me(ctx, "flaky")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Me_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Me(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUnavailable)
}
