package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

// CommentController manages comments attached to posts.
type CommentController struct {
	posts    store.PostStore
	comments store.CommentStore
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(posts store.PostStore, comments store.CommentStore) *CommentController {
	return &CommentController{posts: posts, comments: comments}
}

// CreateComment attaches a comment to an existing post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		PostID  string `json:"postId"`
		Content string `json:"content"`
	}
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	postID := strings.TrimSpace(req.PostID)
	content := strings.TrimSpace(req.Content)
	userID, ok := getUserID(ctx)
	if postID == "" || !utils.HasVisibleText(content) || !ok {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeValidation, "PostId and content are required")
		return
	}

	if _, err := c.posts.FindPostByID(ctx.Request.Context(), postID); err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}

	comment := models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := c.comments.CreateComment(ctx.Request.Context(), &comment); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusCreated, gin.H{"data": comment})
}

// GetComments lists every comment in creation order.
func (c *CommentController) GetComments(ctx *gin.Context) {
	comments, err := c.comments.ListComments(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"comments": comments})
}

// GetCommentByID returns a single comment.
func (c *CommentController) GetCommentByID(ctx *gin.Context) {
	comment, err := c.comments.FindCommentByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Comment not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"comment": comment})
}

// GetCommentsByPostID lists the comments of one post; an unknown post yields an empty list.
func (c *CommentController) GetCommentsByPostID(ctx *gin.Context) {
	comments, err := c.comments.ListCommentsByPost(ctx.Request.Context(), ctx.Param("postId"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"comments": comments})
}

// UpdateCommentByID keeps the current text when the new content is empty.
func (c *CommentController) UpdateCommentByID(ctx *gin.Context) {
	var req contentRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	comment, err := c.comments.FindCommentByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Comment not found"))
		return
	}
	userID, _ := getUserID(ctx)
	if err := authorizeOwner(userID, comment, "Unauthorized to update this comment"); err != nil {
		utils.Fail(ctx, err)
		return
	}

	if content := strings.TrimSpace(req.Content); utils.HasVisibleText(content) {
		comment.Content = content
	}
	if err := c.comments.UpdateComment(ctx.Request.Context(), comment); err != nil {
		utils.Fail(ctx, lookupError(err, "Comment not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"data": comment})
}

// DeleteCommentByID removes a comment owned by the caller.
func (c *CommentController) DeleteCommentByID(ctx *gin.Context) {
	comment, err := c.comments.FindCommentByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Comment not found"))
		return
	}
	userID, _ := getUserID(ctx)
	if err := authorizeOwner(userID, comment, "Unauthorized to delete this comment"); err != nil {
		utils.Fail(ctx, err)
		return
	}

	if err := c.comments.DeleteComment(ctx.Request.Context(), comment.ID); err != nil {
		utils.Fail(ctx, lookupError(err, "Comment not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, nil)
}
