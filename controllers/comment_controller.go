package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"newswire/models"
	"newswire/policy"
	"newswire/utils"
)

const maxCommentLength = 144

// CommentController manages comments nested under a news item. Every
// operation is scoped to the containing news id from the path.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListComments returns the comments of one news item in insertion order.
func (c *CommentController) ListComments(ctx *gin.Context) {
	news, ok := c.loadNews(ctx)
	if !ok {
		return
	}

	var comments []models.Comment
	err := c.db.Where("news_id = ?", news.ID).Preload("Author").Order("id ASC").Find(&comments).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// CreateComment attaches a comment to an existing news item. A missing news
// id is a 404 and nothing is created.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "content is required")
		return
	}

	content, ok := validateContent(ctx, req.Content)
	if !ok {
		return
	}

	news, ok := c.loadNews(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	comment := models.Comment{NewsID: news.ID, AuthorID: userID, Content: content}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create comment")
		return
	}
	if err := c.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return
	}

	utils.Created(ctx, gin.H{"comment": comment})
}

// GetComment returns one comment, resolved strictly within its news scope.
func (c *CommentController) GetComment(ctx *gin.Context) {
	news, ok := c.loadNews(ctx)
	if !ok {
		return
	}
	comment, ok := c.loadComment(ctx, news.ID)
	if !ok {
		return
	}
	if err := c.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment replaces the content, the only mutable field. The parent
// news reference never changes: the binding target has no field for it, so
// a news_id in the payload is silently dropped.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "content is required")
		return
	}

	content, ok := validateContent(ctx, req.Content)
	if !ok {
		return
	}

	c.applyContentUpdate(ctx, &content)
}

// PatchComment partially updates the content; an absent content field
// leaves the comment unchanged. Reparenting attempts are ignored the same
// way as in UpdateComment.
func (c *CommentController) PatchComment(ctx *gin.Context) {
	var req struct {
		Content *string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var content *string
	if req.Content != nil {
		validated, ok := validateContent(ctx, *req.Content)
		if !ok {
			return
		}
		content = &validated
	}

	c.applyContentUpdate(ctx, content)
}

// DeleteComment removes a comment; only its author may delete it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	news, ok := c.loadNews(ctx)
	if !ok {
		return
	}
	comment, ok := c.loadOwnedComment(ctx, news.ID)
	if !ok {
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// applyContentUpdate holds the shared scope, ownership and persistence path
// of PUT and PATCH. A nil content means nothing to change.
func (c *CommentController) applyContentUpdate(ctx *gin.Context, content *string) {
	news, ok := c.loadNews(ctx)
	if !ok {
		return
	}
	comment, ok := c.loadOwnedComment(ctx, news.ID)
	if !ok {
		return
	}

	if content != nil {
		if err := c.db.Model(&comment).UpdateColumn("content", *content).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to update comment")
			return
		}
	}
	if err := c.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// loadNews resolves the containing news item from the path.
func (c *CommentController) loadNews(ctx *gin.Context) (models.News, bool) {
	var news models.News
	id, ok := pathID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
		return news, false
	}
	if err := c.db.First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "news not found")
			return news, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load news")
		return news, false
	}
	return news, true
}

// loadComment resolves a comment inside its news scope. A comment that
// exists under a different news id is not found on this path.
func (c *CommentController) loadComment(ctx *gin.Context, newsID uint) (models.Comment, bool) {
	var comment models.Comment
	id, ok := pathID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
		return comment, false
	}
	err := c.db.Where("id = ? AND news_id = ?", id, newsID).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
			return comment, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return comment, false
	}
	return comment, true
}

// loadOwnedComment adds the write half of the ownership policy on top of
// loadComment; existence resolves before ownership, so 404 wins over 403.
func (c *CommentController) loadOwnedComment(ctx *gin.Context, newsID uint) (models.Comment, bool) {
	comment, ok := c.loadComment(ctx, newsID)
	if !ok {
		return comment, false
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return comment, false
	}
	if !policy.Allow(userID, &comment, policy.ActionWrite) {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only modify your own comments")
		return comment, false
	}
	return comment, true
}

func validateContent(ctx *gin.Context, raw string) (string, bool) {
	content := strings.TrimSpace(utils.Sanitize(raw))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40033, "content: cannot be empty")
		return "", false
	}
	if len([]rune(content)) > maxCommentLength {
		utils.Error(ctx, http.StatusBadRequest, 40034, "content: must be at most 144 characters")
		return "", false
	}
	return content, true
}
