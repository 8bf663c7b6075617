package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
)

func TestPostSendsCommentThread(t *testing.T) {
	var captured struct {
		path   string
		part   string
		auth   string
		thread commentThread
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.part = r.URL.Query().Get("part")
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.thread))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kind":"youtube#commentThread","id":"thread-1"}`))
	}))
	defer server.Close()

	poster := &CommentPoster{BaseURL: server.URL}
	client := resty.New().SetAuthToken("the-token")

	err := poster.Post(context.Background(), client, "video-1", "nice video")

	require.NoError(t, err)
	assert.Equal(t, "/commentThreads", captured.path)
	assert.Equal(t, "snippet", captured.part)
	assert.Equal(t, "Bearer the-token", captured.auth)
	assert.Equal(t, "video-1", captured.thread.Snippet.VideoID)
	assert.Equal(t, "nice video", captured.thread.Snippet.TopLevelComment.Snippet.TextOriginal)
}

func TestPostMapsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The video owner has disabled comments."}}`))
	}))
	defer server.Close()

	poster := &CommentPoster{BaseURL: server.URL}

	err := poster.Post(context.Background(), resty.New(), "video-1", "hi")

	var postingErr *appErrors.PostingError
	require.ErrorAs(t, err, &postingErr)
	assert.Equal(t, "video-1", postingErr.TargetID)
	assert.False(t, postingErr.Timeout)
	assert.Contains(t, err.Error(), "disabled comments")
}

func TestPostMapsErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	poster := &CommentPoster{BaseURL: server.URL}

	err := poster.Post(context.Background(), resty.New(), "video-1", "hi")

	var postingErr *appErrors.PostingError
	require.ErrorAs(t, err, &postingErr)
	assert.Contains(t, err.Error(), "503")
}

func TestPostTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	poster := &CommentPoster{BaseURL: server.URL}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := poster.Post(ctx, resty.New(), "video-1", "hi")

	var postingErr *appErrors.PostingError
	require.ErrorAs(t, err, &postingErr)
	assert.True(t, postingErr.Timeout)
	assert.Equal(t, "video-1", postingErr.TargetID)
}
