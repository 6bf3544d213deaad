package labeler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wadmes/VLSI-LLM/config"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/testutil"
)

// fakeBackend serves /chat/completions, echoing reply(user-content) and
// counting requests.
func fakeBackend(t *testing.T, reply func(user string) string) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		user := req.Messages[len(req.Messages)-1].Content

		resp := map[string]any{
			"id": "cmpl-1",
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply(user)}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient(srv *httptest.Server, name string) *Client {
	return NewClient(config.ModelConfig{
		Name:    name,
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, 1)
}

func TestClient_Complete(t *testing.T) {
	srv, _ := fakeBackend(t, func(string) string { return "Arithmetic Units" })

	reply, err := testClient(srv, "GPT_4o").Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "Arithmetic Units", reply)
}

func TestClient_CompleteWithRetry(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	reply, err := testClient(srv, "GPT_4o").CompleteWithRetry(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestClient_CompleteBatch_KeyedByRequestID(t *testing.T) {
	// The reply embeds the request's own payload so a mixed-up result map
	// would be caught here.
	srv, _ := fakeBackend(t, func(user string) string { return "echo:" + user })
	client := testClient(srv, "GPT_4o")

	var reqs []BatchRequest
	for i := 0; i < 8; i++ {
		reqs = append(reqs, BatchRequest{
			RequestID: fmt.Sprintf("req-%d", i),
			User:      fmt.Sprintf("payload-%d", i),
		})
	}
	results := client.CompleteBatch(context.Background(), reqs, 4)

	require.Len(t, results, 8)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("req-%d", i)
		res, ok := results[id]
		require.True(t, ok)
		require.NoError(t, res.Err)
		assert.Equal(t, "echo:payload-"+fmt.Sprint(i), res.Content)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"Arithmetic Units", "Arithmetic Units"},
		{` "Arithmetic Units" `, "Arithmetic Units"},
		{"arithmetic units", "Arithmetic Units"},
		{"Data Path Units.", "Data Path Units"},
		{"something else entirely", "something else entirely"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeCategory(tt.reply), "reply %q", tt.reply)
	}
}

func setupLabeler(t *testing.T, srv *httptest.Server, cache *Cache) (*Labeler, *gorm.DB, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	dataDir := t.TempDir()
	l := &Labeler{
		DataDir:    dataDir,
		PromptType: "instruction",
		Clients:    []*Client{testClient(srv, "GPT_4o")},
		Cache:      cache,
		Designs:    store.NewDesignRepository(db),
		Labels:     store.NewLabelRepository(db),
		Parallel:   2,
	}
	return l, db, dataDir
}

func writeDesignFiles(t *testing.T, dataDir string, rtlID int) {
	t.Helper()
	dir := filepath.Join(dataDir, "synthesis", fmt.Sprint(rtlID))
	testutil.WriteFile(t, dir, "rtl.sv", testutil.MuxVerilog)
	testutil.WriteFile(t, dir, "instruction.txt", "Design a 2-to-1 multiplexer.")
}

func TestLabeler_PredictTypes(t *testing.T) {
	srv, _ := fakeBackend(t, func(string) string { return `"Data Path Units"` })
	l, _, dataDir := setupLabeler(t, srv, nil)
	writeDesignFiles(t, dataDir, 0)
	writeDesignFiles(t, dataDir, 1)

	require.NoError(t, l.PredictTypes(context.Background(), []int{0, 1}))

	all, err := l.Labels.All()
	require.NoError(t, err)
	assert.Equal(t, map[int]map[string]string{
		0: {"GPT_4o": "Data Path Units"},
		1: {"GPT_4o": "Data Path Units"},
	}, all)
}

func TestLabeler_PredictTypes_SkipsMissingDesign(t *testing.T) {
	srv, calls := fakeBackend(t, func(string) string { return "Other Units" })
	l, _, dataDir := setupLabeler(t, srv, nil)
	writeDesignFiles(t, dataDir, 0)
	// Design 1 has no files on disk.

	require.NoError(t, l.PredictTypes(context.Background(), []int{0, 1}))

	all, err := l.Labels.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.EqualValues(t, 1, atomic.LoadInt64(calls))
}

func TestLabeler_PredictTypes_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cache, err := NewCache(context.Background(), &config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer cache.Close()

	srv, calls := fakeBackend(t, func(string) string { return "Control Logic Units" })
	l, _, dataDir := setupLabeler(t, srv, cache)
	writeDesignFiles(t, dataDir, 0)

	require.NoError(t, l.PredictTypes(context.Background(), []int{0}))
	require.EqualValues(t, 1, atomic.LoadInt64(calls))

	// Second run answers from the cache without touching the backend.
	require.NoError(t, l.PredictTypes(context.Background(), []int{0}))
	assert.EqualValues(t, 1, atomic.LoadInt64(calls))

	all, err := l.Labels.All()
	require.NoError(t, err)
	assert.Equal(t, "Control Logic Units", all[0]["GPT_4o"])
}

func TestLabeler_Inst2Desc(t *testing.T) {
	srv, _ := fakeBackend(t, func(string) string {
		return "This module is a 2-to-1 multiplexer.\n"
	})
	l, db, dataDir := setupLabeler(t, srv, nil)
	writeDesignFiles(t, dataDir, 0)
	testutil.TestDesign(t, db, 0)

	require.NoError(t, l.Inst2Desc(context.Background(), []int{0}))

	rec, err := l.Designs.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "This module is a 2-to-1 multiplexer.", rec.Description)
}

func TestNewCache_DisabledWhenUnconfigured(t *testing.T) {
	cache, err := NewCache(context.Background(), &config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, cache)

	// nil cache is a no-op, not a crash.
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	cache.Set(context.Background(), "k", "v")
}
