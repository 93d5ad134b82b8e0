package client

import (
	"context"

	"blogcms/internal/models"
)

// articleAPI is the slice of Client the cache needs. Injected so tests can
// count network calls.
type articleAPI interface {
	ListArticles(ctx context.Context, page, perPage int) (*PageResponse, error)
	GetArticle(ctx context.Context, id int) (*models.Article, error)
}

type pageKey struct {
	perPage int
	page    int
}

// PageResult is one cached listing page together with its aggregates.
type PageResult struct {
	Articles []models.Article
	Meta     models.PageMeta
}

// PageCache avoids redundant fetches of previously viewed listing pages and
// article details, and keeps cached data consistent with mutations performed
// through this client. Consistency is write-through: every mutation patches
// or discards the affected entries immediately, there is no time-based expiry.
//
// A PageCache is session-lived and not safe for concurrent use.
type PageCache struct {
	api articleAPI

	perPage     int
	currentPage int
	total       int
	totalPages  int

	pages   map[pageKey]*PageResult
	order   []pageKey // insertion order, for the oldest-first cap
	details map[int]models.Article

	maxPages int
	lastErr  string
}

const defaultPerPage = 6

// NewPageCache builds an empty cache bound to an API client. maxPages <= 0
// means no cap on cached pages.
func NewPageCache(api articleAPI, perPage, maxPages int) *PageCache {
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return &PageCache{
		api:         api,
		perPage:     perPage,
		currentPage: 1,
		totalPages:  1,
		pages:       make(map[pageKey]*PageResult),
		details:     make(map[int]models.Article),
		maxPages:    maxPages,
	}
}

// PerPage returns the active page size.
func (c *PageCache) PerPage() int { return c.perPage }

// CurrentPage returns the page of the most recent GetPage call.
func (c *PageCache) CurrentPage() int { return c.currentPage }

// Meta returns the current aggregate pagination state.
func (c *PageCache) Meta() models.PageMeta {
	return models.PageMeta{
		CurrentPage: c.currentPage,
		PerPage:     c.perPage,
		TotalPages:  c.totalPages,
		Total:       c.total,
	}
}

// LastError returns the human-readable message of the most recent fetch
// failure, or "" if the last fetch succeeded.
func (c *PageCache) LastError() string { return c.lastErr }

// SetPageSize switches the active page size. Changing it invalidates the
// whole cache: entries of different sizes would otherwise disagree on
// total_pages.
func (c *PageCache) SetPageSize(perPage int) {
	if perPage < 1 || perPage == c.perPage {
		return
	}
	c.InvalidateAll()
	c.perPage = perPage
}

// GetPage returns the cached entry for (active page size, page) without any
// network call when present, and fetches, validates and stores it otherwise.
// On a failed fetch the error message is recorded and an empty result is
// returned alongside the error.
func (c *PageCache) GetPage(ctx context.Context, page int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	key := pageKey{perPage: c.perPage, page: page}

	if entry, ok := c.pages[key]; ok {
		c.currentPage = page
		return *entry, nil
	}

	resp, err := c.api.ListArticles(ctx, page, c.perPage)
	if err != nil {
		c.lastErr = "failed to load articles: " + err.Error()
		return PageResult{Meta: c.Meta()}, err
	}
	c.lastErr = ""

	entry := &PageResult{Articles: resp.Data, Meta: resp.Meta}
	c.storePage(key, entry)

	c.currentPage = page
	c.total = resp.Meta.Total
	c.totalPages = resp.Meta.TotalPages

	return *entry, nil
}

// GetArticle returns a defensive copy of the cached detail entry, fetching
// it on a miss. Edits to the returned value never reach the cache.
func (c *PageCache) GetArticle(ctx context.Context, id int) (models.Article, error) {
	if a, ok := c.details[id]; ok {
		return copyArticle(a), nil
	}

	a, err := c.api.GetArticle(ctx, id)
	if err != nil {
		c.lastErr = "failed to load article: " + err.Error()
		return models.Article{}, err
	}
	c.lastErr = ""

	c.details[id] = copyArticle(*a)
	return copyArticle(*a), nil
}

// InvalidatePage drops one cached page of the given size.
func (c *PageCache) InvalidatePage(perPage, page int) {
	key := pageKey{perPage: perPage, page: page}
	if _, ok := c.pages[key]; !ok {
		return
	}
	delete(c.pages, key)
	c.dropFromOrder(key)
}

// InvalidateAll clears every page entry, every detail entry, and resets the
// pagination aggregates to their initial state.
func (c *PageCache) InvalidateAll() {
	c.pages = make(map[pageKey]*PageResult)
	c.order = c.order[:0]
	c.details = make(map[int]models.Article)
	c.currentPage = 1
	c.totalPages = 1
	c.total = 0
	c.lastErr = ""
}

// OnArticleCreated patches the cache after a successful create: the article
// goes to the head of the cached first page of the active size, and the
// aggregates are recomputed on every cached entry of that size.
func (c *PageCache) OnArticleCreated(a models.Article) {
	c.total++
	c.totalPages = ceilDiv(c.total, c.perPage)

	if entry, ok := c.pages[pageKey{perPage: c.perPage, page: 1}]; ok {
		entry.Articles = append([]models.Article{copyArticle(a)}, entry.Articles...)
		if len(entry.Articles) > c.perPage {
			entry.Articles = entry.Articles[:c.perPage]
		}
	}
	c.refreshMeta()
}

// OnArticleUpdated replaces the article in every cached page that holds it,
// and refreshes the detail entry when present.
func (c *PageCache) OnArticleUpdated(a models.Article) {
	for _, entry := range c.pages {
		for i := range entry.Articles {
			if entry.Articles[i].ID == a.ID {
				entry.Articles[i] = copyArticle(a)
			}
		}
	}
	if _, ok := c.details[a.ID]; ok {
		c.details[a.ID] = copyArticle(a)
	}
}

// OnArticleDeleted removes the article from every cached page, decrements
// the total and recomputes total_pages. If the currently displayed page is
// now an empty cached page and not the first one, the previous page is
// fetched so the UI never shows an empty non-first page.
func (c *PageCache) OnArticleDeleted(ctx context.Context, id int) {
	for _, entry := range c.pages {
		kept := entry.Articles[:0]
		for _, a := range entry.Articles {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		entry.Articles = kept
	}
	delete(c.details, id)

	if c.total > 0 {
		c.total--
	}
	c.totalPages = ceilDiv(c.total, c.perPage)
	if c.totalPages < 1 {
		c.totalPages = 1
	}
	c.refreshMeta()

	if c.currentPage > 1 {
		key := pageKey{perPage: c.perPage, page: c.currentPage}
		if entry, ok := c.pages[key]; ok && len(entry.Articles) == 0 {
			c.InvalidatePage(c.perPage, c.currentPage)
			_, _ = c.GetPage(ctx, c.currentPage-1)
		}
	}
}

// storePage inserts an entry, evicting the oldest-inserted one when the cap
// is exceeded. Not LRU: a re-read does not refresh an entry's position.
func (c *PageCache) storePage(key pageKey, entry *PageResult) {
	if _, ok := c.pages[key]; !ok {
		c.order = append(c.order, key)
	}
	c.pages[key] = entry

	if c.maxPages > 0 && len(c.order) > c.maxPages {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.pages, oldest)
	}
}

func (c *PageCache) dropFromOrder(key pageKey) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// refreshMeta pushes the current aggregates into every cached entry of the
// active size, keeping total/total_pages consistent across cached pages.
func (c *PageCache) refreshMeta() {
	for key, entry := range c.pages {
		if key.perPage != c.perPage {
			continue
		}
		entry.Meta.Total = c.total
		entry.Meta.TotalPages = c.totalPages
	}
}

func copyArticle(a models.Article) models.Article {
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		a.UpdatedAt = &t
	}
	return a
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
