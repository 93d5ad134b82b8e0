package handlers

import (
	"context"
	"errors"
	"net/http"

	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockAuth resolves tokens by name: "admin" and "user" are valid,
// anything else fails. Keeps handler tests free of real JWTs.
type mockAuth struct {
	registerUser models.PublicUser
	registerErr  error
	loginUser    models.PublicUser
	loginToken   string
	loginErr     error
	currentUser  models.PublicUser
	currentErr   error

	lastRegisterUsername string
	lastLoginUsername    string
}

func (m *mockAuth) Register(ctx context.Context, username, password, captcha string) (models.PublicUser, error) {
	m.lastRegisterUsername = username
	return m.registerUser, m.registerErr
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (models.PublicUser, string, error) {
	m.lastLoginUsername = username
	return m.loginUser, m.loginToken, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (*service.Claims, error) {
	switch token {
	case "admin":
		return &service.Claims{UserID: 1, Username: "admin", IsAdmin: true}, nil
	case "user":
		return &service.Claims{UserID: 2, Username: "reader", IsAdmin: false}, nil
	default:
		return nil, errors.New("bad token")
	}
}

func (m *mockAuth) CurrentUser(ctx context.Context, id int) (models.PublicUser, error) {
	return m.currentUser, m.currentErr
}

type mockArticles struct {
	page      service.ArticlePage
	listErr   error
	article   models.Article
	getErr    error
	created   models.Article
	createErr error
	updated   models.Article
	updateErr error
	deleteErr error

	lastListPage    int
	lastListPerPage int
	lastCreate      service.CreateArticleInput
	lastPatch       service.ArticlePatch
	lastRequester   service.Requester
	deleteCalls     int
}

func (m *mockArticles) List(ctx context.Context, page, perPage int) (service.ArticlePage, error) {
	m.lastListPage = page
	m.lastListPerPage = perPage
	return m.page, m.listErr
}

func (m *mockArticles) GetByID(ctx context.Context, id int) (models.Article, error) {
	return m.article, m.getErr
}

func (m *mockArticles) Create(ctx context.Context, in service.CreateArticleInput) (models.Article, error) {
	m.lastCreate = in
	return m.created, m.createErr
}

func (m *mockArticles) Update(ctx context.Context, id int, req service.Requester, patch service.ArticlePatch) (models.Article, error) {
	m.lastRequester = req
	m.lastPatch = patch
	return m.updated, m.updateErr
}

func (m *mockArticles) Delete(ctx context.Context, id int, req service.Requester) error {
	m.lastRequester = req
	m.deleteCalls++
	return m.deleteErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Config{}, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
