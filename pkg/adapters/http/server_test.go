package http

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/strata/internal/dto"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/adapters/memory"
	redisadapter "github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/adapters/zip"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBody(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, zip.Write(&buf, files))
	return buf.Bytes()
}

func upload(t *testing.T, handler http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/documents/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func runServerSuite(t *testing.T, cache ports.DocumentCache) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler := NewHandler(&Server{Cache: cache, Metrics: metrics})

	w := upload(t, handler, zipBody(t, testutils.SampleDocument().Files()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "sample", created.Name)
	assert.Equal(t, 2, created.Failed)

	t.Run("Get", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/"+created.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got dto.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Len(t, got.Nodes, 2)
	})

	t.Run("List", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), created.ID)
	})

	t.Run("Layer PNG", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/"+created.ID+"/layers/Background.png?width=8", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	})

	t.Run("Layer Without Pixels", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/"+created.ID+"/layers/Group.png", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Unknown Layer", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/"+created.ID+"/layers/Nope.png", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("DELETE", "/documents/"+created.ID, nil))
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/documents/"+created.ID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.Positive(t, testutil.ToFloat64(metrics.Documents.WithLabelValues("ok")))
}

func TestServer_MemoryCache(t *testing.T) {
	runServerSuite(t, memory.NewCache())
}

func TestServer_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	runServerSuite(t, redisadapter.NewFromClient(client))
}

func TestServer_UploadRejections(t *testing.T) {
	handler := NewHandler(&Server{Cache: memory.NewCache(), MaxUploadBytes: 1 << 20})

	t.Run("Not A Zip", func(t *testing.T) {
		w := upload(t, handler, []byte("plain text"))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Foreign Zip", func(t *testing.T) {
		files := testutils.SampleDocument().Files()
		files["mimetype"] = []byte("application/epub+zip")
		w := upload(t, handler, zipBody(t, files))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Missing Maindoc", func(t *testing.T) {
		w := upload(t, handler, zipBody(t, map[string][]byte{"mimetype": []byte("application/x-krita")}))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Too Large", func(t *testing.T) {
		small := NewHandler(&Server{Cache: memory.NewCache(), MaxUploadBytes: 16})
		w := upload(t, small, zipBody(t, testutils.SampleDocument().Files()))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Too Large Expanded", func(t *testing.T) {
		files := testutils.SampleDocument().Files()
		files["padding"] = make([]byte, 4<<20)
		body := zipBody(t, files)
		require.Less(t, len(body), 1<<20)

		small := NewHandler(&Server{Cache: memory.NewCache(), MaxUploadBytes: 1 << 20, MaxExpandedBytes: 1 << 20})
		w := upload(t, small, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Default Expansion Ratio", func(t *testing.T) {
		s := &Server{Cache: memory.NewCache(), MaxUploadBytes: 1 << 20}
		NewHandler(s)
		assert.Equal(t, int64(DefaultExpansionRatio<<20), s.MaxExpandedBytes)
	})
}

func TestServer_Health(t *testing.T) {
	handler := NewHandler(&Server{Cache: memory.NewCache(), MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.HasPrefix(w.Body.String(), "# metrics"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/documents/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
