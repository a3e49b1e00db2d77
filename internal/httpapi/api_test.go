package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediasync/internal/convert"
	"mediasync/internal/manager"
	"mediasync/internal/source"
	"mediasync/internal/store"
)

func newTestAPI(t *testing.T) (*API, *manager.Manager, string) {
	t.Helper()
	root := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "mediasync.db")

	st, err := store.New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mgr := manager.New(st, convert.New("", ""), nil, manager.Config{
		Sources: []source.Config{{Path: root, Name: "photos", Recursive: true}},
	})

	return New(mgr, nil), mgr, root
}

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestNopReturnsNoContent(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	api.handleNop(rr, httptest.NewRequest(http.MethodGet, "/nop", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCapabilityListsAcceptedExtensions(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	api.handleCapability(rr, httptest.NewRequest(http.MethodGet, "/capability", nil))

	var resp capabilityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.AcceptedExtensions, ".mp4")
	assert.Contains(t, resp.Verbs, "/list")
}

func TestCheckRequiresDateParam(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	api.handleCheck(rr, httptest.NewRequest(http.MethodGet, "/check", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckReflectsLastUpdated(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "a.jpg"), "a")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	rr := httptest.NewRecorder()
	api.handleCheck(rr, httptest.NewRequest(http.MethodGet, "/check?date=0", nil))

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp["changed"])
}

func TestListFiltersByTypeAndCategory(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "photo.jpg"), "p")
	writeFile(t, filepath.Join(root, "clip.mp4"), "v")
	writeFile(t, filepath.Join(root, "sub", "nested.jpg"), "n")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	rr := httptest.NewRecorder()
	api.handleList(rr, httptest.NewRequest(http.MethodGet, "/list?type=p", nil))

	var recs []store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	assert.Len(t, recs, 2)

	rr = httptest.NewRecorder()
	api.handleList(rr, httptest.NewRequest(http.MethodGet, "/list?c=sub", nil))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	assert.Len(t, recs, 1)
}

func TestCategoriesReturnsDistinctValues(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "a.jpg"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.jpg"), "b")
	writeFile(t, filepath.Join(root, "sub", "c.jpg"), "c")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	rr := httptest.NewRecorder()
	api.handleCategories(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))

	var cats []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cats))
	assert.ElementsMatch(t, []string{"ROOT", "sub"}, cats)
}

func TestServeRangeReturnsNotFoundForUnknownID(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	api.handleServeRange(rr, httptest.NewRequest(http.MethodGet, "/item?id=9999", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeRangeSupportsPartialContent(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "clip.mp4"), "0123456789")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	recs, err := mgr.AllFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	req := httptest.NewRequest(http.MethodGet, "/item?id="+strconv.FormatInt(recs[0].ID, 10), nil)
	req.Header.Set("Range", "bytes=2-4")
	rr := httptest.NewRecorder()
	api.handleServeRange(rr, req)

	assert.Equal(t, http.StatusPartialContent, rr.Code)
	assert.Equal(t, "234", rr.Body.String())
}

func TestPhotoRejectsNonPhotoRecord(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "clip.mp4"), "v")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	recs, err := mgr.AllFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	req := httptest.NewRequest(http.MethodGet, "/photo?id="+strconv.FormatInt(recs[0].ID, 10), nil)
	rr := httptest.NewRecorder()
	api.handlePhoto(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCurrentRoundTrips(t *testing.T) {
	api, mgr, root := newTestAPI(t)
	writeFile(t, filepath.Join(root, "a.jpg"), "a")

	require.NoError(t, mgr.Start(context.Background()))
	defer mgr.StopWatching()

	recs, err := mgr.AllFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rr := httptest.NewRecorder()
	api.handleSetCurrent(rr, httptest.NewRequest(http.MethodPut, "/current?id="+strconv.FormatInt(recs[0].ID, 10), nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	api.handleGetCurrent(rr, httptest.NewRequest(http.MethodGet, "/current", nil))
	var got store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, recs[0].Path, got.Path)
}

func TestChapterReturnsEmptyList(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	api.handleChapter(rr, httptest.NewRequest(http.MethodGet, "/chapter?id=1", nil))
	assert.Equal(t, "[]\n", rr.Body.String())
}
