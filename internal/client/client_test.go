package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/sequencer"
)

func TestLogin_StoresToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var req loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ann@example.com", req.Email)
			_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"1"}}`))
		case "/projects/3/tasks":
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, err := c.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	_, err = c.ListProjectTasks(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "a@b.co", "x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestListProjectTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":4,"title":"a","sequence":0},{"id":2,"title":"b","sequence":1}]`))
	}))
	defer srv.Close()

	rows, err := New(srv.URL, WithToken("t")).ListProjectTasks(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []sequencer.Row{{ID: 4, Sequence: 0, Title: "a"}, {ID: 2, Sequence: 1, Title: "b"}}, rows)
}

func TestUpdateSequence_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/7/sequence", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(idempotencyKeyHeader))

		var req sequenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, sequenceRequest{ProjectID: 3, Sequence: 1}, req)

		_, _ = w.Write([]byte(`{"success":true,"updated_collection":[{"task_id":5,"sequence":0,"title":"x"},{"task_id":7,"sequence":1,"title":"y"}]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).UpdateSequence(context.Background(), 7, 3, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []sequencer.Row{{ID: 5, Sequence: 0, Title: "x"}, {ID: 7, Sequence: 1, Title: "y"}}, res.UpdatedCollection)
}

func TestUpdateSequence_SuccessWithoutCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).UpdateSequence(context.Background(), 7, 3, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.UpdatedCollection)
}

func TestUpdateSequence_EmptyCollectionIsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"updated_collection":[]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).UpdateSequence(context.Background(), 7, 3, 1)
	require.NoError(t, err)
	assert.NotNil(t, res.UpdatedCollection)
	assert.Empty(t, res.UpdatedCollection)
}

func TestUpdateSequence_Refused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Sequence out of range"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).UpdateSequence(context.Background(), 7, 3, 9)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Sequence out of range", res.Message)
}

func TestUpdateSequence_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).UpdateSequence(context.Background(), 7, 3, 1)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "502")
}

func TestUpdateSequence_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).UpdateSequence(context.Background(), 7, 3, 1)
	assert.Error(t, err)
}

func TestWithHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	start := time.Now()
	_, err := c.UpdateSequence(context.Background(), 1, 3, 0)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestUpdateSequence_FreshKeyPerCall(t *testing.T) {
	keys := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys[r.Header.Get(idempotencyKeyHeader)] = true
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := c.UpdateSequence(context.Background(), 7, 3, 1)
		require.NoError(t, err)
	}
	assert.Len(t, keys, 3)
}

func TestClientDrivesReconciler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"updated_collection":[{"task_id":2,"sequence":0,"title":"b"},{"task_id":1,"sequence":1,"title":"a"}]}`))
	}))
	defer srv.Close()

	rows := []sequencer.Row{{ID: 1, Sequence: 0, Title: "a"}, {ID: 2, Sequence: 1, Title: "b"}}
	rec := sequencer.New(3, rows, New(srv.URL))

	require.True(t, rec.OnDragStart(1))
	require.True(t, rec.OnHoverCross(1, 1))
	out := rec.OnDrop(context.Background(), 1, 1)

	assert.Equal(t, sequencer.OutcomeCommitted, out.Kind)
	assert.Equal(t, int64(2), rec.Rows()[0].ID)
}
