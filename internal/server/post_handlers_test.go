package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")

	t.Run("Success", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{
			"content": "my first post",
		}, alice.AccessToken)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "my first post", body["content"])
		assert.EqualValues(t, alice.ID, body["user_id"])
		assert.EqualValues(t, 0, body["likes_count"])
	})

	t.Run("Empty Content", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{
			"content": "",
		}, alice.AccessToken)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestFeed(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")
	carol := registerAccount(t, app, "carol")

	// alice follows bob; carol stays outside alice's graph
	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bob.ID), nil, alice.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, content := range []string{"bob one", "bob two"} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": content}, bob.AccessToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "carol post"}, carol.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, feed := doJSONList(t, app, http.MethodGet, "/api/posts/", alice.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, feed, 2, "feed holds only followed users' posts")
	assert.Equal(t, "bob two", feed[0]["content"], "newest first")
	assert.Equal(t, "bob one", feed[1]["content"])

	// carol follows nobody, so her feed is empty
	resp, feed = doJSONList(t, app, http.MethodGet, "/api/posts/", carol.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, feed)
}

func TestToggleLike(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")

	resp, post := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "like me"}, bob.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := uint(post["id"].(float64))

	likePath := fmt.Sprintf("/api/posts/%d/like", postID)

	// First toggle likes
	resp, body := doJSON(t, app, http.MethodPost, likePath, nil, alice.AccessToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "liked", body["message"])
	liked := body["post"].(map[string]any)
	assert.EqualValues(t, 1, liked["likes_count"])
	assert.Equal(t, true, liked["liked"])

	// Second toggle unlikes
	resp, body = doJSON(t, app, http.MethodPost, likePath, nil, alice.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "unliked", body["message"])
	unliked := body["post"].(map[string]any)
	assert.EqualValues(t, 0, unliked["likes_count"])
	assert.Equal(t, false, unliked["liked"])

	// Liking a missing post is a 404
	resp, _ = doJSON(t, app, http.MethodPost, "/api/posts/99999/like", nil, alice.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdatePost(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")

	resp, post := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "original"}, alice.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postPath := fmt.Sprintf("/api/posts/%d", uint(post["id"].(float64)))

	t.Run("Non-Author Forbidden", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, postPath, map[string]string{"content": "hijacked"}, bob.AccessToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Author Updates", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, postPath, map[string]string{"content": "edited"}, alice.AccessToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "edited", body["content"])
	})

	t.Run("Patch Also Works", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPatch, postPath, map[string]string{"content": "patched"}, alice.AccessToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "patched", body["content"])
	})
}

func TestDeletePost(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")

	resp, post := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "to delete"}, alice.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postPath := fmt.Sprintf("/api/posts/%d", uint(post["id"].(float64)))

	t.Run("Non-Author Forbidden", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, postPath, nil, bob.AccessToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Author Deletes", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, postPath, nil, alice.AccessToken)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, postPath, nil, alice.AccessToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestComments(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")

	resp, post := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "discuss"}, alice.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	commentsPath := fmt.Sprintf("/api/posts/%d/comments", uint(post["id"].(float64)))

	t.Run("Create", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, commentsPath, map[string]string{"content": "nice one"}, bob.AccessToken)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "nice one", body["content"])
		assert.EqualValues(t, bob.ID, body["user_id"])
		assert.NotContains(t, body, "post", "unloaded post association must stay off the wire")
	})

	t.Run("List", func(t *testing.T) {
		resp, comments := doJSONList(t, app, http.MethodGet, commentsPath, alice.AccessToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, comments, 1)
		assert.Equal(t, "nice one", comments[0]["content"])
		assert.NotContains(t, comments[0], "post")
	})

	t.Run("Missing Post", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/99999/comments", map[string]string{"content": "void"}, bob.AccessToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Empty Content", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, commentsPath, map[string]string{"content": ""}, bob.AccessToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetUserPosts(t *testing.T) {
	_, app := newTestServer(t)
	alice := registerAccount(t, app, "alice")
	bob := registerAccount(t, app, "bob")

	for _, content := range []string{"one", "two", "three"} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": content}, bob.AccessToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, posts := doJSONList(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/posts", bob.ID), alice.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, posts, 3)

	resp, posts = doJSONList(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/posts?limit=2", bob.ID), alice.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, posts, 2)
}
