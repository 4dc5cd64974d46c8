// Package rest exposes the CodePulse JSON API over HTTP using gin.
package rest

import (
	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs. All fields are required.
type Deps struct {
	Users           UserService
	Categories      CategoryService
	BlogPosts       BlogPostService
	Images          ImageService
	Guard           Guard
	Metrics         *metrics.Metrics
	Logger          logging.Logger
	AllowAllOrigins bool
	// MaxUploadBytes bounds an image upload: its body is cut off a little
	// above this and at most this much is kept in memory.
	MaxUploadBytes int64
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Logger.With("module", "rest")
	registerValidation()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log, d.Metrics), CORS(d.AllowAllOrigins))
	if d.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = d.MaxUploadBytes
	}

	h := &handlers{
		users:      d.Users,
		categories: d.Categories,
		posts:      d.BlogPosts,
		images:     d.Images,
		metrics:    d.Metrics,
		log:        log,
		maxUpload:  d.MaxUploadBytes,
	}
	writer := RequireRoles(d.Guard, d.Metrics, log, common.RoleWriter)

	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")

	authn := api.Group("/authentication")
	authn.POST("/login", h.login)
	authn.POST("/register", h.register)

	categories := api.Group("/categories")
	categories.GET("", h.listCategories)
	categories.GET("/:id", h.getCategory)
	categories.POST("", writer, h.createCategory)
	categories.PUT("/:id", writer, h.updateCategory)
	categories.DELETE("/:id", writer, h.deleteCategory)

	posts := api.Group("/blogposts")
	posts.GET("", h.listBlogPosts)
	posts.GET("/:idOrHandle", h.getBlogPost)
	posts.POST("", writer, h.createBlogPost)
	posts.PUT("/:id", writer, h.updateBlogPost)
	posts.DELETE("/:id", writer, h.deleteBlogPost)

	images := api.Group("/images")
	images.GET("", h.listImages)
	images.POST("", writer, h.uploadImage)

	r.GET("/Images/:name", h.serveImage)

	return r
}
