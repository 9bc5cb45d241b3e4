package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"

	accessDenied = "Access Denied: Invalid token"
)

// AuthRequired ensures the request carries a valid bearer access token.
// It never consults the store, so an access token stays usable until it expires.
func AuthRequired(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			utils.Abort(ctx, http.StatusUnauthorized, utils.CodeTokenInvalid, accessDenied)
			return
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			utils.Abort(ctx, http.StatusUnauthorized, utils.CodeTokenInvalid, accessDenied)
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
