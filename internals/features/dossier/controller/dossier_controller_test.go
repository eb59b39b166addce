package controller_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/features/dossier/catalog"
	routes "inscription_backend/internals/features/dossier/route"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	app := fiber.New()
	routes.DossierRoutes(app.Group("/api"), cat)
	return app
}

func TestSections(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/catalog/sections", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Version  string            `json:"version"`
			Sections []json.RawMessage `json:"sections"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "2025-2026", env.Data.Version)
	assert.Len(t, env.Data.Sections, catalog.SectionCount)
}

func TestField(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/catalog/fields/csp_etudiant_code", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Label string `json:"label"`
			Type  struct {
				Kind  string `json:"kind"`
				Annex int    `json:"annex"`
			} `json:"type"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Code CSP étudiant", env.Data.Label)
	assert.Equal(t, "coded_reference", env.Data.Type.Kind)
	assert.Equal(t, 5, env.Data.Type.Annex)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/catalog/fields/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartRequest(t *testing.T, docType, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if docType != "" {
		require.NoError(t, w.WriteField("document_type", docType))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = fw.Write(content)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/validate", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestValidateDocument(t *testing.T) {
	app := newApp(t)
	pdf := []byte("%PDF-1.4\n%%EOF\n")

	resp, err := app.Test(multipartRequest(t, "droit_image", "cession.pdf", pdf), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Data.Valid)

	resp, err = app.Test(multipartRequest(t, "photo", "photo.pdf", pdf), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.False(t, env.Data.Valid)

	resp, err = app.Test(multipartRequest(t, "visa", "v.pdf", pdf), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = app.Test(multipartRequest(t, "cvec", "", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
