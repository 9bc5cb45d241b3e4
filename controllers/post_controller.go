package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

// PostController manages CRUD operations for posts.
type PostController struct {
	posts    store.PostStore
	comments store.CommentStore
}

// NewPostController creates a new PostController instance.
func NewPostController(posts store.PostStore, comments store.CommentStore) *PostController {
	return &PostController{posts: posts, comments: comments}
}

type contentRequest struct {
	Content string `json:"content"`
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req contentRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	content := strings.TrimSpace(req.Content)
	userID, ok := getUserID(ctx)
	if !utils.HasVisibleText(content) || !ok {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeValidation, "Content and userId are required")
		return
	}

	post := models.Post{UserID: userID, Content: content}
	if err := p.posts.CreatePost(ctx.Request.Context(), &post); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusCreated, gin.H{"data": post})
}

// GetPosts lists every post in creation order.
func (p *PostController) GetPosts(ctx *gin.Context) {
	posts, err := p.posts.ListPosts(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"posts": posts})
}

// GetPostByID returns a single post.
func (p *PostController) GetPostByID(ctx *gin.Context) {
	post, err := p.posts.FindPostByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"post": post})
}

// GetPostByUserID lists the authenticated user's posts.
func (p *PostController) GetPostByUserID(ctx *gin.Context) {
	userID, _ := getUserID(ctx)
	posts, err := p.posts.ListPostsByUser(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"posts": posts})
}

// UpdatePostByID replaces a post's content. Empty content keeps the current text.
func (p *PostController) UpdatePostByID(ctx *gin.Context) {
	var req contentRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	post, err := p.posts.FindPostByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}
	userID, _ := getUserID(ctx)
	if err := authorizeOwner(userID, post, "Unauthorized to update this post"); err != nil {
		utils.Fail(ctx, err)
		return
	}

	if content := strings.TrimSpace(req.Content); utils.HasVisibleText(content) {
		post.Content = content
	}
	if err := p.posts.UpdatePost(ctx.Request.Context(), post); err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"data": post})
}

// DeletePostByID removes a post together with its comments.
func (p *PostController) DeletePostByID(ctx *gin.Context) {
	post, err := p.posts.FindPostByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}
	userID, _ := getUserID(ctx)
	if err := authorizeOwner(userID, post, "Unauthorized to delete this post"); err != nil {
		utils.Fail(ctx, err)
		return
	}

	// Comments go first so a failure never leaves them without a post
	if err := p.comments.DeleteCommentsByPost(ctx.Request.Context(), post.ID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := p.posts.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		utils.Fail(ctx, lookupError(err, "Post not found"))
		return
	}
	utils.Success(ctx, http.StatusOK, nil)
}
