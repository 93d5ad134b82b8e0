package handlers

import (
	"net/http"
	"strconv"

	"blogcms/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage    = 1
	defaultPerPage = 6
)

// queryInt parses an integer query parameter with a fallback default.
// ok is false when the parameter is present but not a number.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	qs := c.Query(name)
	if qs == "" {
		return def, true
	}
	n, err := strconv.Atoi(qs)
	if err != nil {
		return 0, false
	}
	return n, true
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return 0, false
	}
	return id, true
}

// articleEnvelope is the mutation response shape: {"data":{"article":{...}}}.
func articleEnvelope(a any) gin.H {
	return gin.H{"data": gin.H{"article": a}}
}

// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Param        page      query  int  false  "Page number (1-based)"
// @Param        per_page  query  int  false  "Page size"
// @Success      200  {object}  map[string]interface{}  "data, meta"
// @Failure      400  {object}  map[string]string
// @Router       /api/articles [get]
func (h *Handler) listArticles(c *gin.Context) {
	page, okPage := queryInt(c, "page", defaultPage)
	perPage, okPer := queryInt(c, "per_page", defaultPerPage)
	if !okPage || !okPer || page < 1 || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination parameters"})
		return
	}

	result, err := h.services.List(c.Request.Context(), page, perPage)
	if err != nil {
		h.respondError(c, "articles_list_failed", err, "page", page, "per_page", perPage)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Articles,
		"meta": gin.H{
			"current_page": result.Page,
			"per_page":     result.PerPage,
			"total_pages":  result.TotalPages,
			"total":        result.Total,
		},
	})
}

// @Summary      Get article
// @Tags         articles
// @Produce      json
// @Param        id  path  int  true  "Article ID"
// @Success      200  {object}  models.Article
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [get]
func (h *Handler) getArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	article, err := h.services.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "articles_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, article)
}

// resolveImage picks the uploaded file over an explicit image_url, storing
// the file when present. Returns ("", false) when neither was supplied.
func (h *Handler) resolveImage(c *gin.Context) (string, bool, error) {
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, err := h.images.Save(fh)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	}
	if url, ok := c.GetPostForm("image_url"); ok && url != "" {
		return url, true, nil
	}
	return "", false, nil
}

// @Summary      Create article
// @Description  Multipart form: title, content, image file or image_url
// @Tags         articles
// @Accept       mpfd
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "data.article"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/articles [post]
// @Security     BearerAuth
func (h *Handler) createArticle(c *gin.Context) {
	userID, _ := requester(c)

	imageURL, _, err := h.resolveImage(c)
	if err != nil {
		h.respondError(c, "articles_upload_failed", err)
		return
	}

	article, err := h.services.Create(c.Request.Context(), service.CreateArticleInput{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		AuthorID: userID,
		ImageURL: imageURL,
	})
	if err != nil {
		h.respondError(c, "articles_create_failed", err, "userId", userID)
		return
	}

	c.JSON(http.StatusCreated, articleEnvelope(article))
}

// @Summary      Update article
// @Description  Multipart merge-patch: absent fields keep their prior values
// @Tags         articles
// @Accept       mpfd
// @Produce      json
// @Param        id  path  int  true  "Article ID"
// @Success      200  {object}  map[string]interface{}  "data.article"
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, isAdmin := requester(c)

	var patch service.ArticlePatch
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		patch.Content = &v
	}
	imageURL, hasImage, err := h.resolveImage(c)
	if err != nil {
		h.respondError(c, "articles_upload_failed", err, "id", id)
		return
	}
	if hasImage {
		patch.ImageURL = &imageURL
	}

	article, err := h.services.Update(c.Request.Context(), id, service.Requester{ID: userID, IsAdmin: isAdmin}, patch)
	if err != nil {
		h.respondError(c, "articles_update_failed", err, "id", id, "userId", userID)
		return
	}

	c.JSON(http.StatusOK, articleEnvelope(article))
}

// @Summary      Delete article
// @Tags         articles
// @Produce      json
// @Param        id  path  int  true  "Article ID"
// @Success      204  "empty"
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, isAdmin := requester(c)

	err := h.services.Delete(c.Request.Context(), id, service.Requester{ID: userID, IsAdmin: isAdmin})
	if err != nil {
		h.respondError(c, "articles_delete_failed", err, "id", id, "userId", userID)
		return
	}

	c.Status(http.StatusNoContent)
}
