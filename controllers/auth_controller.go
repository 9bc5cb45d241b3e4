package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/services"
	"github.com/cppla/postboard/utils"
)

// AuthController exposes registration, login and token rotation.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	user, err := a.auth.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusCreated, gin.H{"data": user})
}

// Login verifies credentials and returns a token pair with the user id.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Fail(ctx, err)
		return
	}

	res, err := a.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"id":           res.UserID,
	})
}

// Refresh rotates a refresh token into a new pair.
func (a *AuthController) Refresh(ctx *gin.Context) {
	var req refreshRequest
	// A malformed body counts as a missing token
	_ = bindOptionalJSON(ctx, &req)

	pair, err := a.auth.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout revokes the presented refresh token.
func (a *AuthController) Logout(ctx *gin.Context) {
	var req refreshRequest
	_ = bindOptionalJSON(ctx, &req)

	if err := a.auth.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, http.StatusOK, gin.H{"message": "Logged out successfully"})
}
