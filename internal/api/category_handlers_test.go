package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monomori/monomori-server/internal/domain"
)

type categoriesBody struct {
	Categories []CategoryResponse `json:"categories"`
}

func TestListCategories(t *testing.T) {
	ts := setupTestServer(t)
	ts.createBook(t, map[string]any{"title": "Dune"})
	ts.createBook(t, map[string]any{"title": "Emma"})

	resp := ts.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeData[categoriesBody](t, resp)
	require.Len(t, body.Categories, len(domain.Categories()))

	byName := make(map[string]CategoryResponse)
	for _, c := range body.Categories {
		byName[c.Category] = c
		assert.Equal(t, "CARD", c.ViewMode, c.Category)
		assert.NotEmpty(t, c.Fields, c.Category)
	}

	books := byName["BOOKS"]
	assert.Equal(t, 2, books.Count)
	assert.Equal(t, "title", books.TitleField)
	assert.Equal(t, "books", books.Slug)
	assert.Zero(t, byName["MUSIC"].Count)
}

func TestListCategories_ViewMode(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/preferences/view-modes/music", map[string]any{"viewMode": "SPREADSHEET"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeData[categoriesBody](t, ts.api.Get("/api/v1/categories"))
	for _, c := range body.Categories {
		if c.Category == "MUSIC" {
			assert.Equal(t, "SPREADSHEET", c.ViewMode)
		} else {
			assert.Equal(t, "CARD", c.ViewMode)
		}
	}
}
