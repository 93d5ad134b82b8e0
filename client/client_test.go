package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogcms/internal/models"
)

func TestClient_ListArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/articles" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("per_page") != "6" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []models.Article{{ID: 7, Title: "T"}},
			"meta": models.PageMeta{CurrentPage: 2, PerPage: 6, TotalPages: 2, Total: 10},
		})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	resp, err := c.ListArticles(context.Background(), 2, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 7 {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if resp.Meta.Total != 10 || resp.Meta.TotalPages != 2 {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
}

func TestClient_ListArticles_ShapeValidation(t *testing.T) {
	// at least four incompatible shapes circulated historically; anything
	// that is not {data, meta} must be rejected, not misread
	bodies := []string{
		`{"articles":[],"total":10}`,
		`{"data":{"data":[],"meta":{}}}`,
		`{"data":[]}`,
		`[]`,
	}
	for _, body := range bodies {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		c := &Client{BaseURL: srv.URL}
		_, err := c.ListArticles(context.Background(), 1, 6)
		if !errors.Is(err, ErrUnexpectedShape) {
			t.Fatalf("body %s: expected ErrUnexpectedShape, got %v", body, err)
		}
		srv.Close()
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.GetArticle(context.Background(), 42)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "not found" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestClient_CreateArticle_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method=%s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.FormValue("title") != "T" || r.FormValue("content") != "C" || r.FormValue("image_url") != "/images/x.png" {
			t.Fatalf("unexpected form: %+v", r.MultipartForm.Value)
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"article": models.Article{ID: 11, Title: "T"}},
		})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "tok"}
	a, err := c.CreateArticle(context.Background(), ArticleDraft{Title: "T", Content: "C", ImageURL: "/images/x.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 11 {
		t.Fatalf("unexpected article: %+v", a)
	}
}

func TestClient_UpdateArticle_OmitsAbsentFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if _, ok := r.MultipartForm.Value["content"]; ok {
			t.Fatalf("absent field must not reach the form: %+v", r.MultipartForm.Value)
		}
		if r.FormValue("title") != "New" {
			t.Fatalf("unexpected form: %+v", r.MultipartForm.Value)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"article": models.Article{ID: 5, Title: "New"}},
		})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	a, err := c.UpdateArticle(context.Background(), 5, ArticleDraft{Title: "New"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "New" {
		t.Fatalf("unexpected article: %+v", a)
	}
}

func TestClient_AuthFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["username"] != "admin" {
				t.Fatalf("unexpected login body: %v", body)
			}
			_ = json.NewEncoder(w).Encode(LoginResult{
				Token: "signed.jwt",
				User:  models.PublicUser{ID: 1, Username: "admin", IsAdmin: true},
			})
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer signed.jwt" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(models.PublicUser{ID: 1, Username: "admin", IsAdmin: true})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	res, err := c.Login(context.Background(), "admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "signed.jwt" || !res.User.IsAdmin {
		t.Fatalf("unexpected login result: %+v", res)
	}

	// /me without the token is rejected
	if _, err := c.Me(context.Background()); err == nil {
		t.Fatalf("expected 401 without token")
	}

	c.SetToken(res.Token)
	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Username != "admin" {
		t.Fatalf("unexpected identity: %+v", me)
	}
}
