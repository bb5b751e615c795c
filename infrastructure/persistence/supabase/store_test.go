package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const storedRow = `[{
	"id": "map-1",
	"user_id": "alice",
	"title": "Plans",
	"description": "Q3",
	"nodes": [{"id":"1","label":"Root","position":{"x":400,"y":300}},{"id":"2","label":"Child","position":{"x":10,"y":20}}],
	"edges": [{"id":"e1","source":"1","target":"2"},{"id":"e2","source":"1","target":"ghost"}],
	"metadata": {"title":"Plans"},
	"created_at": "2024-01-01T10:00:00.123456+00:00",
	"updated_at": "2024-01-02T10:00:00+00:00"
}]`

type recordedRequest struct {
	method string
	query  string
	body   string
}

func newTestStore(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Store, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{method: r.Method, query: r.URL.RawQuery, body: string(body)})
		assert.Equal(t, "/"+TableName, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := postgrest.NewClient(server.URL, "", nil)
	return NewStore(client, zap.NewNop()), &seen
}

func TestLoad(t *testing.T) {
	store, seen := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.map-1", r.URL.Query().Get("id"))
		_, _ = io.WriteString(w, storedRow)
	})

	doc, err := store.Load(context.Background(), "map-1")

	require.NoError(t, err)
	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodGet, (*seen)[0].method)
	assert.Equal(t, "alice", doc.OwnerID)
	assert.Equal(t, "map-1", doc.MindMap.ID())
	assert.Equal(t, 2, doc.MindMap.NodeCount())
	assert.Equal(t, 1, doc.MindMap.EdgeCount(), "dangling edge is dropped on load")
	assert.Equal(t, 2024, doc.CreatedAt.Year())
}

func TestLoad_NotFound(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "[]")
	})

	_, err := store.Load(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestList_OrdersByUpdatedAt(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.alice", r.URL.Query().Get("user_id"))
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("order"), "updated_at.desc"))
		_, _ = io.WriteString(w, `[{"id":"b","title":"B","updated_at":"2024-02-01T00:00:00Z"},{"id":"a","title":"A","updated_at":"2024-01-01T00:00:00Z"}]`)
	})

	list, err := store.List(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "A", list[1].Title)
}

func TestSave_Insert(t *testing.T) {
	store, seen := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"new-id","user_id":"alice"}]`)
	})
	m := aggregates.NewDefaultMindMap()

	id, err := store.Save(context.Background(), "alice", m, "Plans", "desc")

	require.NoError(t, err)
	assert.Equal(t, "new-id", id)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte((*seen)[0].body), &body))
	assert.Equal(t, "alice", body["user_id"])
	assert.Equal(t, "Plans", body["title"])
	assert.Len(t, body["nodes"], 1)
	assert.NotContains(t, body, "id")
}

func TestSave_UpdateChecksOwner(t *testing.T) {
	store, seen := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"map-1","user_id":"alice"}]`)
	})
	m := aggregates.NewDefaultMindMap()
	m.AssignID("map-1")

	_, err := store.Save(context.Background(), "mallory", m, "t", "")
	assert.True(t, pkgerrors.IsForbidden(err))
	require.Len(t, *seen, 1, "no write after a failed ownership check")

	id, err := store.Save(context.Background(), "alice", m, "t", "")
	require.NoError(t, err)
	assert.Equal(t, "map-1", id)
	last := (*seen)[len(*seen)-1]
	assert.Equal(t, http.MethodPatch, last.method)
	assert.Contains(t, last.query, "user_id=eq.alice")
}

func TestDelete(t *testing.T) {
	store, seen := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, `[{"id":"map-1","user_id":"alice"}]`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	assert.True(t, pkgerrors.IsForbidden(store.Delete(context.Background(), "map-1", "bob")))
	require.NoError(t, store.Delete(context.Background(), "map-1", "alice"))
	assert.Equal(t, http.MethodDelete, (*seen)[len(*seen)-1].method)
}

func TestDatabaseErrors(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"boom"}`)
	})

	_, err := store.Load(context.Background(), "map-1")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}
