package controllers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/middleware"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

// owned is implemented by every resource that belongs to a single user.
type owned interface {
	OwnerID() string
}

// authorizeOwner allows a mutation only when actorID created the resource.
func authorizeOwner(actorID string, resource owned, msg string) error {
	if actorID == "" || resource.OwnerID() != actorID {
		return utils.ForbiddenError(msg)
	}
	return nil
}

func getUserID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString(middleware.ContextUserIDKey)
	return id, id != ""
}

// bindOptionalJSON decodes the body into dst; an empty body leaves dst untouched.
func bindOptionalJSON(ctx *gin.Context, dst interface{}) error {
	if err := ctx.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return utils.ValidationError("invalid request payload")
	}
	return nil
}

// lookupError turns a store miss into a 404 with msg.
func lookupError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFoundError(msg)
	}
	return err
}
