// Package client is a typed client for the blog REST API plus a
// session-lived pagination cache for article listings.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"blogcms/internal/models"
)

// ErrUnexpectedShape reports a response that does not match the API schema
// (e.g. a list payload missing "data" or "meta").
var ErrUnexpectedShape = errors.New("unexpected response shape")

// APIError is a non-2xx response with the server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the blog backend. Token, when set, is sent as a bearer
// credential on every request.
type Client struct {
	http.Client
	BaseURL string
	Token   string
}

// PageResponse is one page of the article listing.
type PageResponse struct {
	Data []models.Article `json:"data"`
	Meta models.PageMeta  `json:"meta"`
}

// ArticleDraft carries the fields sent on create/update. Image (with
// ImageName) takes precedence over ImageURL when both are set.
type ArticleDraft struct {
	Title     string
	Content   string
	ImageURL  string
	ImageName string
	Image     io.Reader
}

// LoginResult is the login response payload.
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) { c.Token = token }

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// do sends the request and decodes a JSON body into out (when non-nil).
// Non-2xx statuses become *APIError carrying the server's message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// ListArticles fetches one listing page and validates the response schema:
// both "data" and "meta" must be present.
func (c *Client) ListArticles(ctx context.Context, page, perPage int) (*PageResponse, error) {
	path := "/api/articles?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)

	var raw struct {
		Data *[]models.Article `json:"data"`
		Meta *models.PageMeta  `json:"meta"`
	}
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil || raw.Meta == nil {
		return nil, fmt.Errorf("%w: listing response missing data or meta", ErrUnexpectedShape)
	}
	return &PageResponse{Data: *raw.Data, Meta: *raw.Meta}, nil
}

// GetArticle fetches one article by id.
func (c *Client) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	var a models.Article
	if err := c.getJSON(ctx, "/api/articles/"+strconv.Itoa(id), &a); err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, fmt.Errorf("%w: article response missing id", ErrUnexpectedShape)
	}
	return &a, nil
}

// multipartBody builds the form used by create and update. Absent fields
// are simply not written, which is what makes update a merge-patch.
func multipartBody(d ArticleDraft, includeEmpty bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	writeField := func(name, value string) error {
		if value == "" && !includeEmpty {
			return nil
		}
		return w.WriteField(name, value)
	}

	if err := writeField("title", d.Title); err != nil {
		return nil, "", err
	}
	if err := writeField("content", d.Content); err != nil {
		return nil, "", err
	}
	if d.Image != nil {
		part, err := w.CreateFormFile("image", d.ImageName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, d.Image); err != nil {
			return nil, "", err
		}
	} else if d.ImageURL != "" {
		if err := w.WriteField("image_url", d.ImageURL); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// decodeArticleEnvelope unwraps {"data":{"article":{...}}}.
func decodeArticleEnvelope(raw *struct {
	Data *struct {
		Article *models.Article `json:"article"`
	} `json:"data"`
}) (*models.Article, error) {
	if raw.Data == nil || raw.Data.Article == nil {
		return nil, fmt.Errorf("%w: mutation response missing data.article", ErrUnexpectedShape)
	}
	return raw.Data.Article, nil
}

// CreateArticle posts a new article as a multipart form.
func (c *Client) CreateArticle(ctx context.Context, d ArticleDraft) (*models.Article, error) {
	body, contentType, err := multipartBody(d, true)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/articles", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var raw struct {
		Data *struct {
			Article *models.Article `json:"article"`
		} `json:"data"`
	}
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return decodeArticleEnvelope(&raw)
}

// UpdateArticle sends a merge-patch: only set draft fields reach the form.
func (c *Client) UpdateArticle(ctx context.Context, id int, d ArticleDraft) (*models.Article, error) {
	body, contentType, err := multipartBody(d, false)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/api/articles/"+strconv.Itoa(id), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var raw struct {
		Data *struct {
			Article *models.Article `json:"article"`
		} `json:"data"`
	}
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return decodeArticleEnvelope(&raw)
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/articles/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Login exchanges credentials for a bearer token. The token is NOT
// installed automatically; Session owns that decision.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.postJSON(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password, captcha string) (*models.PublicUser, error) {
	var out models.PublicUser
	err := c.postJSON(ctx, "/api/auth/register", map[string]string{
		"username":  username,
		"password":  password,
		"recaptcha": captcha,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity behind the installed token.
func (c *Client) Me(ctx context.Context) (*models.PublicUser, error) {
	var out models.PublicUser
	if err := c.getJSON(ctx, "/api/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
