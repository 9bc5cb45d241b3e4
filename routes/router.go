package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/controllers"
	"github.com/cppla/postboard/middleware"
	"github.com/cppla/postboard/services"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

// Deps are the collaborators the router hands to controllers.
type Deps struct {
	Config config.AppConfig
	Store  store.Store
	Tokens *utils.TokenManager
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if deps.AccessLog != nil {
		r.Use(ginzap.Ginzap(deps.AccessLog, time.RFC3339, true))
		r.Use(ginzap.CustomRecoveryWithZap(deps.AccessLog, true, recoverJSON))
	} else {
		r.Use(gin.CustomRecovery(recoverJSON))
	}
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	authService := services.NewAuthService(deps.Store, deps.Tokens, utils.Logger)
	authController := controllers.NewAuthController(authService)
	postController := controllers.NewPostController(deps.Store, deps.Store)
	commentController := controllers.NewCommentController(deps.Store, deps.Store)
	authRequired := middleware.AuthRequired(deps.Tokens)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh", authController.Refresh)
	authGroup.POST("/logout", authController.Logout)

	postGroup := api.Group("/post")
	postGroup.GET("/getPosts", postController.GetPosts)
	postGroup.GET("/getPostById/:id", postController.GetPostByID)
	postGroup.POST("/createPost", authRequired, postController.CreatePost)
	postGroup.GET("/getPostByUserId", authRequired, postController.GetPostByUserID)
	postGroup.PUT("/updatePostById/:id", authRequired, postController.UpdatePostByID)
	postGroup.DELETE("/deletePostById/:id", authRequired, postController.DeletePostByID)

	commentGroup := api.Group("/comment")
	commentGroup.GET("/getComments", commentController.GetComments)
	commentGroup.GET("/getCommentById/:id", commentController.GetCommentByID)
	commentGroup.GET("/getCommentsByPostId/:postId", commentController.GetCommentsByPostID)
	commentGroup.POST("/createComment", authRequired, commentController.CreateComment)
	commentGroup.PUT("/updateCommentById/:id", authRequired, commentController.UpdateCommentByID)
	commentGroup.DELETE("/deleteCommentById/:id", authRequired, commentController.DeleteCommentByID)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, utils.CodeRouteMissing, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, utils.CodeRouteMissing, "not found")
	})

	return r
}

// recoverJSON answers a recovered panic with the regular error envelope.
func recoverJSON(ctx *gin.Context, _ interface{}) {
	utils.Abort(ctx, http.StatusInternalServerError, utils.CodeInternal, "Internal server error")
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// AllowAllOrigins cannot be combined with credentials
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
