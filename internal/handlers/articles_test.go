package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogcms/internal/models"
	"blogcms/internal/service"
)

func addHeaders(req *http.Request, h http.Header) {
	for k, vv := range h {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
}

func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestListArticles(t *testing.T) {
	articles := []models.Article{
		{ID: 2, Title: "Second", AuthorID: 1, CreatedAt: time.Now().UTC()},
		{ID: 1, Title: "First", AuthorID: 1, CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	arts := &mockArticles{page: service.ArticlePage{
		Articles:   articles,
		Page:       1,
		PerPage:    6,
		Total:      10,
		TotalPages: 2,
	}}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/articles?page=1&per_page=6", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if arts.lastListPage != 1 || arts.lastListPerPage != 6 {
		t.Fatalf("wrong list params: page=%d per_page=%d", arts.lastListPage, arts.lastListPerPage)
	}

	var resp struct {
		Data []models.Article `json:"data"`
		Meta models.PageMeta  `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].ID != 2 {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if resp.Meta.CurrentPage != 1 || resp.Meta.PerPage != 6 || resp.Meta.Total != 10 || resp.Meta.TotalPages != 2 {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
}

func TestListArticles_InvalidPagination(t *testing.T) {
	r := newTestRouter(&service.Service{Articles: &mockArticles{}, Authorization: &mockAuth{}})

	for _, qs := range []string{"?page=0", "?per_page=0", "?page=abc", "?per_page=-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/articles"+qs, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", qs, w.Code)
		}
	}
}

func TestGetArticle(t *testing.T) {
	arts := &mockArticles{article: models.Article{ID: 5, Title: "T", Content: "C"}}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/articles/5", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var a models.Article
	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ID != 5 || a.Title != "T" {
		t.Fatalf("unexpected article: %+v", a)
	}

	// not found maps to 404
	arts.getErr = fmt.Errorf("%w: article id=404", service.ErrNotFound)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/articles/404", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateArticle_AuthGating(t *testing.T) {
	arts := &mockArticles{}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	body, contentType := multipartForm(t, map[string]string{
		"title": "T", "content": "C", "image_url": "/images/x.png",
	})

	// no token → 401
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// non-admin token → 403
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", contentType)
	addHeaders(req, authHeader("user"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	if arts.lastCreate.Title != "" {
		t.Fatalf("service must not be reached when gated")
	}
}

func TestCreateArticle(t *testing.T) {
	created := models.Article{ID: 9, Title: "T", Content: "C", AuthorID: 1, ImageURL: "/images/x.png"}
	arts := &mockArticles{created: created}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	body, contentType := multipartForm(t, map[string]string{
		"title": "T", "content": "C", "image_url": "/images/x.png",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", body)
	req.Header.Set("Content-Type", contentType)
	addHeaders(req, authHeader("admin"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if arts.lastCreate.Title != "T" || arts.lastCreate.Content != "C" ||
		arts.lastCreate.ImageURL != "/images/x.png" || arts.lastCreate.AuthorID != 1 {
		t.Fatalf("wrong create input: %+v", arts.lastCreate)
	}

	var resp struct {
		Data struct {
			Article models.Article `json:"article"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Article.ID != 9 {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
}

func TestUpdateArticle(t *testing.T) {
	arts := &mockArticles{updated: models.Article{ID: 5, Title: "New"}}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	// merge-patch: only title is sent
	body, contentType := multipartForm(t, map[string]string{"title": "New"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/articles/5", body)
	req.Header.Set("Content-Type", contentType)
	addHeaders(req, authHeader("admin"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if arts.lastPatch.Title == nil || *arts.lastPatch.Title != "New" {
		t.Fatalf("title patch missing: %+v", arts.lastPatch)
	}
	if arts.lastPatch.Content != nil || arts.lastPatch.ImageURL != nil {
		t.Fatalf("absent fields must stay nil: %+v", arts.lastPatch)
	}
	if arts.lastRequester.ID != 1 || !arts.lastRequester.IsAdmin {
		t.Fatalf("wrong requester: %+v", arts.lastRequester)
	}

	// ownership failure maps to 403
	arts.updateErr = fmt.Errorf("%w: user 1 does not own article 5", service.ErrForbidden)
	body, contentType = multipartForm(t, map[string]string{"title": "New"})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/articles/5", body)
	req.Header.Set("Content-Type", contentType)
	addHeaders(req, authHeader("admin"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDeleteArticle(t *testing.T) {
	arts := &mockArticles{}
	r := newTestRouter(&service.Service{Articles: arts, Authorization: &mockAuth{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/articles/5", nil)
	addHeaders(req, authHeader("admin"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
	if arts.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", arts.deleteCalls)
	}

	// missing article maps to 404
	arts.deleteErr = fmt.Errorf("%w: article id=404", service.ErrNotFound)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/articles/404", nil)
	addHeaders(req, authHeader("admin"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
