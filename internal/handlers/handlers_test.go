package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/document"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/internal/middleware"
	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/internal/services"
	"github.com/amaumene/filmdocs/pkg/logger"
	"github.com/amaumene/filmdocs/pkg/worker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFilm struct {
	mu      sync.Mutex
	queries []models.FilmQuery
	body    models.FilmBody
	doc     []byte
	err     error
	block   chan struct{}
}

func (f *fakeFilm) record(q models.FilmQuery) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeFilm) URL(models.FilmQuery) (string, error) { return "", nil }

func (f *fakeFilm) Body(_ context.Context, q models.FilmQuery) (models.FilmBody, error) {
	f.record(q)
	return f.body, f.err
}

func (f *fakeFilm) Document(_ context.Context, q models.FilmQuery) ([]byte, error) {
	f.record(q)
	return f.doc, f.err
}

func newRouter(film *fakeFilm, pool *worker.Pool) (*gin.Engine, *metrics.Metrics) {
	cfg := config.Default()
	m := metrics.New()
	container := &services.Container{
		Film:    film,
		Pool:    pool,
		Metrics: m,
		Logger:  logger.Discard(),
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	New(container, cfg).RegisterRoutes(r)
	return r, m
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func TestFilmDataPassthrough(t *testing.T) {
	film := &fakeFilm{body: models.FilmBody{Data: []byte(`{"Title":"Metropolis"}`), ContentType: "application/json"}}
	r, _ := newRouter(film, nil)

	w := get(r, "/film?title=Metropolis&year=1927&unknown=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"Title":"Metropolis"}`, w.Body.String())

	require.Len(t, film.queries, 1)
	q := film.queries[0]
	require.NotNil(t, q.Title)
	assert.Equal(t, "Metropolis", *q.Title)
	assert.Nil(t, q.ID)
	assert.Equal(t, "1927", q.Year)
}

func TestFilmQueryKeepsEmptyPresence(t *testing.T) {
	film := &fakeFilm{}
	r, _ := newRouter(film, nil)

	get(r, "/film/data?title=&id=tt0017136")
	require.Len(t, film.queries, 1)
	require.NotNil(t, film.queries[0].Title)
	assert.Equal(t, "", *film.queries[0].Title)
	assert.Equal(t, "tt0017136", *film.queries[0].ID)
}

func TestFilmRoutesDocxToDocument(t *testing.T) {
	film := &fakeFilm{doc: []byte("PK-docx")}
	r, _ := newRouter(film, nil)

	w := get(r, "/film?id=tt0017136&format=docx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=film.docx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-docx", w.Body.String())
}

func TestFilmUppercaseDocxStaysOnDataPath(t *testing.T) {
	film := &fakeFilm{err: apperrors.NewInvalidValueError("format", "DOCX", "not one of the allowed values")}
	r, _ := newRouter(film, nil)

	w := get(r, "/film?id=tt0017136&format=DOCX")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	require.Len(t, film.queries, 1)
	assert.Equal(t, "DOCX", film.queries[0].Format)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad input", apperrors.NewPrimaryParameterOmittedError("title", "id"), http.StatusBadRequest},
		{"no data", apperrors.NewNoDataFoundError("Movie not found!"), http.StatusBadGateway},
		{"inner", apperrors.NewInnerError("template broken", nil), http.StatusInternalServerError},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newRouter(&fakeFilm{err: tc.err}, nil)
			w := get(r, "/film/data?title=x")
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "<h1>Error</h1>")
		})
	}
}

func TestErrorPageEscapesDetail(t *testing.T) {
	r, _ := newRouter(&fakeFilm{err: apperrors.NewInvalidValueError("year", "<b>", "not a number")}, nil)

	w := get(r, "/film/data?title=x&year=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "<u>Invalid input data</u>")
	assert.Contains(t, w.Body.String(), "&lt;b&gt;")
	assert.NotContains(t, w.Body.String(), `"<b>"`)
}

func TestDocumentErrors(t *testing.T) {
	r, _ := newRouter(&fakeFilm{err: apperrors.NewNoDataFoundError("Movie not found!")}, nil)

	w := get(r, "/film/document?title=Nope")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "attachment; filename=film.docx", w.Header().Get("Content-Disposition"))
	doc, err := document.Open(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Failed to gather film data: Movie not found!", doc.Text())

	r, _ = newRouter(&fakeFilm{err: apperrors.NewParametersConflictError("title", "id")}, nil)
	w = get(r, "/film/document?title=a&id=b")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot be used together")
}

func TestPoolExhaustedIs503(t *testing.T) {
	film := &fakeFilm{block: make(chan struct{})}
	pool := worker.New(worker.Config{CoreSize: 1, MaxSize: 1, QueueSize: 1, NamePrefix: "film-exec-"})
	defer pool.Close()
	r, m := newRouter(film, pool)

	var wg sync.WaitGroup
	submit := func(title string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			get(r, "/film/data?title="+title)
		}()
	}

	submit("running")
	require.Eventually(t, func() bool { return pool.Stats().Busy == 1 }, time.Second, 5*time.Millisecond)
	submit("queued")
	require.Eventually(t, func() bool { return pool.Stats().Queued == 1 }, time.Second, 5*time.Millisecond)

	w := get(r, "/film/data?title=rejected")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(film.block)
	wg.Wait()

	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, mw.Body.String(), "filmdocs_worker_pool_rejections_total 1")
}

func TestHomeHealthMetrics(t *testing.T) {
	pool := worker.New(worker.Config{CoreSize: 1, MaxSize: 2, QueueSize: 1})
	defer pool.Close()
	r, _ := newRouter(&fakeFilm{}, pool)

	assert.Contains(t, get(r, "/").Body.String(), "filmdocs")

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"workers"`)

	assert.Contains(t, get(r, "/metrics").Body.String(), "go_goroutines")
}
