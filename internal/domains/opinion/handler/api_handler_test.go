package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"what-to-watch/internal/domains/opinion/mocks"
	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

var dune = &model.Opinion{
	ID:        1,
	Title:     "Dune",
	Text:      "Great movie",
	Timestamp: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
}

func setupAPIRouter(t *testing.T) (*gin.Engine, *mocks.MockService, *mocks.MockBulkImportService) {
	t.Helper()
	svc := mocks.NewMockService(t)
	importer := &mocks.MockBulkImportService{}
	t.Cleanup(func() { importer.AssertExpectations(t) })

	h := NewAPIHandler(svc, importer)
	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/opinions", h.ListOpinions)
		api.POST("/opinions", h.CreateOpinion)
		api.POST("/opinions/import", h.ImportOpinions)
		api.GET("/opinions/:id", h.GetOpinion)
		api.PATCH("/opinions/:id", h.UpdateOpinion)
		api.DELETE("/opinions/:id", h.DeleteOpinion)
		api.GET("/get-random-opinion", h.GetRandomOpinion)
	}
	return r, svc, importer
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestCreateOpinion_Success(t *testing.T) {
	r, svc, _ := setupAPIRouter(t)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateOpinionRequest) bool {
		return *req.Title == "Dune" && *req.Text == "Great movie"
	}), service.ChannelAPI).Return(dune, nil)

	w := doJSON(r, http.MethodPost, "/api/opinions", `{"title":"Dune","text":"Great movie"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"opinion":{
		"id":1,"title":"Dune","text":"Great movie","source":null,
		"timestamp":"2024-05-01T10:30:00Z","added_by":null}}`, w.Body.String())
}

func TestCreateOpinion_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing text", `{"title":"Dune"}`, msgMissingFields},
		{"missing title", `{"text":"Great movie"}`, msgMissingFields},
		{"empty body", ``, msgMissingFields},
		{"malformed json", `{"title":`, msgInvalidJSON},
		{"not an object", `["Dune"]`, msgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := setupAPIRouter(t)

			w := doJSON(r, http.MethodPost, "/api/opinions", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decodeMessage(t, w))
		})
	}
}

func TestCreateOpinion_DuplicateText(t *testing.T) {
	r, svc, _ := setupAPIRouter(t)

	svc.On("Create", mock.Anything, mock.Anything, service.ChannelAPI).Return(nil, model.ErrDuplicateText)

	w := doJSON(r, http.MethodPost, "/api/opinions", `{"title":"Dune","text":"Great movie"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrDuplicateText.Message, decodeMessage(t, w))
}

func TestGetOpinion(t *testing.T) {
	t.Run("returns a random opinion", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Random", mock.Anything).Return(dune, nil)

		w := doJSON(r, http.MethodGet, "/api/opinions/999", "")

		require.Equal(t, http.StatusOK, w.Code)
		var body model.OpinionEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Dune", body.Opinion.Title)
	})

	t.Run("non integer id", func(t *testing.T) {
		r, _, _ := setupAPIRouter(t)

		w := doJSON(r, http.MethodGet, "/api/opinions/abc", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non positive id", func(t *testing.T) {
		for _, id := range []string{"0", "-1"} {
			r, _, _ := setupAPIRouter(t)

			w := doJSON(r, http.MethodGet, "/api/opinions/"+id, "")

			assert.Equal(t, http.StatusNotFound, w.Code, id)
			assert.Equal(t, model.ErrOpinionNotFound.Message, decodeMessage(t, w))
		}
	})

	t.Run("empty store", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Random", mock.Anything).Return(nil, model.ErrEmptyStore)

		w := doJSON(r, http.MethodGet, "/api/opinions/1", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrEmptyStore.Message, decodeMessage(t, w))
	})
}

func TestGetRandomOpinion_EmptyStore(t *testing.T) {
	r, svc, _ := setupAPIRouter(t)
	svc.On("Random", mock.Anything).Return(nil, model.ErrEmptyStore)

	w := doJSON(r, http.MethodGet, "/api/get-random-opinion", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOpinions(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("ListAll", mock.Anything).Return([]model.Opinion{}, nil)

		w := doJSON(r, http.MethodGet, "/api/opinions", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"opinions":[]}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("ListAll", mock.Anything).Return(nil, errors.New("conn closed"))

		w := doJSON(r, http.MethodGet, "/api/opinions", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeMessage(t, w))
	})
}

func TestUpdateOpinion(t *testing.T) {
	t.Run("partial update answers 201", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		updated := *dune
		updated.Title = "Dune: Part One"
		svc.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(req *model.UpdateOpinionRequest) bool {
			return req.Title != nil && req.Text == nil
		})).Return(&updated, nil)

		w := doJSON(r, http.MethodPatch, "/api/opinions/1", `{"title":"Dune: Part One"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var body model.OpinionEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Dune: Part One", body.Opinion.Title)
		assert.Equal(t, "Great movie", body.Opinion.Text)
	})

	t.Run("not found", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil, model.ErrOpinionNotFound)

		w := doJSON(r, http.MethodPatch, "/api/opinions/5", `{"title":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate text", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil, model.ErrDuplicateText)

		w := doJSON(r, http.MethodPatch, "/api/opinions/5", `{"text":"taken"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNegativeIDIsNotFound(t *testing.T) {
	tests := []struct {
		method string
		body   string
	}{
		{http.MethodPatch, `{"title":"x"}`},
		{http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			r, _, _ := setupAPIRouter(t)

			w := doJSON(r, tt.method, "/api/opinions/-1", tt.body)

			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestDeleteOpinion(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Delete", mock.Anything, int64(1)).Return(nil)

		w := doJSON(r, http.MethodDelete, "/api/opinions/1", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("absent", func(t *testing.T) {
		r, svc, _ := setupAPIRouter(t)
		svc.On("Delete", mock.Anything, int64(2)).Return(model.ErrOpinionNotFound)

		w := doJSON(r, http.MethodDelete, "/api/opinions/2", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func newUpload(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "opinions.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/opinions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportOpinions(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		r, _, importer := setupAPIRouter(t)
		importer.On("Import", mock.Anything, mock.Anything).Return(&model.BulkImportResult{
			TotalRows: 2,
			Loaded:    1,
			Errors:    []model.ImportRowError{{Row: 3, Field: "text", Message: "text is required"}},
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newUpload(t, "title,text\nA,a\nB,\n"))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total_rows":2,"loaded":1,"errors":[{"row":3,"field":"text","message":"text is required"}]}`, w.Body.String())
	})

	t.Run("bad header", func(t *testing.T) {
		r, _, importer := setupAPIRouter(t)
		importer.On("Import", mock.Anything, mock.Anything).Return(nil, &model.OpinionError{
			Code:    model.ErrInvalidCSVHeader.Code,
			Message: "unknown columns: rating",
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newUpload(t, "title,text,rating\n"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "unknown columns: rating", decodeMessage(t, w))
	})

	t.Run("store failure keeps the loaded count", func(t *testing.T) {
		var logs bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&logs)
		t.Cleanup(func() { log.Logger = prev })

		r, _, importer := setupAPIRouter(t)
		importer.On("Import", mock.Anything, mock.Anything).Return(&model.BulkImportResult{
			TotalRows: 2,
			Loaded:    1,
		}, errors.New("failed to import row 3: connection refused"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newUpload(t, "title,text\nA,a\nB,b\n"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeMessage(t, w))

		var aborted map[string]interface{}
		for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			if entry["message"] == "Bulk import aborted" {
				aborted = entry
			}
		}
		require.NotNil(t, aborted)
		assert.EqualValues(t, 1, aborted["loaded"])
		assert.EqualValues(t, 2, aborted["total_rows"])
	})

	t.Run("no file", func(t *testing.T) {
		r, _, _ := setupAPIRouter(t)

		w := doJSON(r, http.MethodPost, "/api/opinions/import", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, msgFileRequired, decodeMessage(t, w))
	})
}
