package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"newswire/models"
	"newswire/policy"
	"newswire/utils"
)

const maxTitleLength = 255

// NewsController manages CRUD and voting for news items.
type NewsController struct {
	db *gorm.DB
}

// NewNewsController creates a NewsController.
func NewNewsController(db *gorm.DB) *NewsController {
	return &NewsController{db: db}
}

// ListNews returns every news item in insertion order.
func (n *NewsController) ListNews(ctx *gin.Context) {
	var items []models.News
	if err := n.db.Preload("Author").Order("id ASC").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list news")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// CreateNews submits a new link. The author is always the caller and the
// vote counter always starts at zero; the request body cannot set either.
func (n *NewsController) CreateNews(ctx *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Link  string `json:"link" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "title and link are required")
		return
	}

	title, link, ok := validateNewsFields(ctx, req.Title, req.Link)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	news := models.News{AuthorID: userID, Title: title, Link: link}
	if err := n.db.Create(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create news")
		return
	}
	if err := n.db.Preload("Author").First(&news, news.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load news")
		return
	}

	utils.Created(ctx, gin.H{"news": news})
}

// GetNews returns a single news item with its author and comments.
func (n *NewsController) GetNews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
		return
	}

	var news models.News
	err := n.db.Preload("Author").Preload("Comments").Preload("Comments.Author").
		First(&news, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load news")
		return
	}
	utils.Success(ctx, gin.H{"news": news})
}

// UpdateNews fully replaces the mutable fields (title, link). Only the
// author may update; author, creation time and votes stay untouched.
func (n *NewsController) UpdateNews(ctx *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Link  string `json:"link" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title and link are required")
		return
	}

	title, link, ok := validateNewsFields(ctx, req.Title, req.Link)
	if !ok {
		return
	}

	news, ok := n.loadOwnedNews(ctx)
	if !ok {
		return
	}

	updates := map[string]interface{}{"title": title, "link": link}
	if err := n.db.Model(&news).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update news")
		return
	}
	if err := n.db.Preload("Author").First(&news, news.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load news")
		return
	}

	utils.Success(ctx, gin.H{"news": news})
}

// PatchNews partially updates title and/or link; ownership rules match UpdateNews.
func (n *NewsController) PatchNews(ctx *gin.Context) {
	var req struct {
		Title *string `json:"title"`
		Link  *string `json:"link"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(utils.Sanitize(*req.Title))
		if title == "" || len([]rune(title)) > maxTitleLength {
			utils.Error(ctx, http.StatusBadRequest, 40023, "title: must be 1-255 characters")
			return
		}
		updates["title"] = title
	}
	if req.Link != nil {
		link := strings.TrimSpace(*req.Link)
		if !validLink(link) {
			utils.Error(ctx, http.StatusBadRequest, 40024, "link: must be a valid http(s) URL")
			return
		}
		updates["link"] = link
	}

	news, ok := n.loadOwnedNews(ctx)
	if !ok {
		return
	}

	if len(updates) > 0 {
		if err := n.db.Model(&news).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update news")
			return
		}
	}
	if err := n.db.Preload("Author").First(&news, news.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load news")
		return
	}

	utils.Success(ctx, gin.H{"news": news})
}

// DeleteNews removes a news item and all of its comments in one
// transaction. Only the author may delete.
func (n *NewsController) DeleteNews(ctx *gin.Context) {
	news, ok := n.loadOwnedNews(ctx)
	if !ok {
		return
	}

	err := n.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_id = ?", news.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&news).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete news")
		return
	}

	utils.Success(ctx, gin.H{"message": "news deleted"})
}

// Upvote increments the vote counter by exactly one. Any authenticated
// caller may vote; the increment happens in the database so concurrent
// votes are never lost.
func (n *NewsController) Upvote(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
		return
	}

	var news models.News
	if err := n.db.First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load news")
		return
	}

	err := n.db.Model(&models.News{}).Where("id = ?", news.ID).
		UpdateColumn("up_votes", gorm.Expr("up_votes + 1")).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to upvote news")
		return
	}

	if err := n.db.Preload("Author").First(&news, news.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load news")
		return
	}

	utils.Success(ctx, gin.H{"news": news})
}

// loadOwnedNews resolves the target item and enforces the write half of the
// ownership policy. Existence is checked first, so a write to a missing id
// is 404 while a write to someone else's item is 403.
func (n *NewsController) loadOwnedNews(ctx *gin.Context) (models.News, bool) {
	var news models.News
	id, ok := pathID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
		return news, false
	}
	if err := n.db.First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
			return news, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load news")
		return news, false
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return news, false
	}
	if !policy.Allow(userID, &news, policy.ActionWrite) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only modify your own news")
		return news, false
	}
	return news, true
}

func validateNewsFields(ctx *gin.Context, rawTitle, rawLink string) (string, string, bool) {
	title := strings.TrimSpace(utils.Sanitize(rawTitle))
	if title == "" || len([]rune(title)) > maxTitleLength {
		utils.Error(ctx, http.StatusBadRequest, 40023, "title: must be 1-255 characters")
		return "", "", false
	}
	link := strings.TrimSpace(rawLink)
	if !validLink(link) {
		utils.Error(ctx, http.StatusBadRequest, 40024, "link: must be a valid http(s) URL")
		return "", "", false
	}
	return title, link, true
}

// pathID parses a numeric path parameter. Anything that is not a positive
// integer cannot name a row and must never reach a query.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func validLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
