package inventory

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, maxBytes int64) http.Handler {
	t.Helper()
	svc := NewCatalogService(newMemoryRepo(), nil, nil, nil, nil, ServiceConfig{})
	r := chi.NewRouter()
	r.Route("/inventory", NewHandler(nil, svc, maxBytes).MountRoutes)
	return r
}

func TestHandlerImportRawAndExport(t *testing.T) {
	h := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/inventory/import", strings.NewReader(feedHeader+"A-1,Widget,,1,0,1\n,blank,,1,0,1\n"))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory/export", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Disposition"), "products.csv")
	require.Equal(t, feedHeader+"A-1,Widget,,1,0,1\n", rr.Body.String())
}

func TestHandlerImportMultipart(t *testing.T) {
	h := newTestRouter(t, 0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(feedHeader + "A-1,Widget,,1,0,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/inventory/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestHandlerImportWithoutSKUColumnReportsRows(t *testing.T) {
	h := newTestRouter(t, 0)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/inventory/import", strings.NewReader("foo,bar\n1,2\n")))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"imported":0`)
	require.Contains(t, rr.Body.String(), "Error importing row 1,2")
}

func TestHandlerImportRejectsOversizedBody(t *testing.T) {
	h := newTestRouter(t, 64)
	feed := feedHeader + strings.Repeat("A-1,Widget,,1,0,1\n", 10)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/inventory/import", strings.NewReader(feed)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
