package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/helpers/apperr"
)

func TestHTTPAnswererWithoutURL(t *testing.T) {
	_, err := NewHTTPAnswerer("", time.Second).Answer(context.Background(), "q")
	assert.ErrorIs(t, err, apperr.ErrCorpusUnavailable)
}

func TestHTTPAnswerer(t *testing.T) {
	long := strings.Repeat("é", 250)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answer", r.URL.Path)
		var req answerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Quels codes ?", req.Question)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "Voir annexe 5",
			"sources": []map[string]string{
				{"source": "dossier.pdf", "content": long},
				{"content": "court"},
			},
		})
	}))
	defer srv.Close()

	ans, err := NewHTTPAnswerer(srv.URL+"/", time.Second).Answer(context.Background(), "Quels codes ?")
	require.NoError(t, err)
	assert.Equal(t, "Voir annexe 5", ans.Answer)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "dossier.pdf", ans.Sources[0].Source)
	assert.Equal(t, strings.Repeat("é", 200)+"...", ans.Sources[0].Excerpt)
	assert.Equal(t, "Unknown", ans.Sources[1].Source)
	assert.Equal(t, "court", ans.Sources[1].Excerpt)
}

func TestHTTPAnswererStatusMapping(t *testing.T) {
	status := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()
	a := NewHTTPAnswerer(srv.URL, time.Second)

	_, err := a.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, apperr.ErrCorpusUnavailable)

	status = http.StatusInternalServerError
	_, err = a.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrCorpusUnavailable)
}
