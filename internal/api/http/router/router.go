// Package router wires handlers, middleware and static serving into
// one HTTP handler per site.
package router

import (
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/api/http/handler"
	"github.com/peroxide-labs/peroxide/internal/api/http/middleware"
	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/render"
	"github.com/peroxide-labs/peroxide/internal/service"
	"github.com/peroxide-labs/peroxide/internal/site"
)

// Router assembles the HTTP surface of one site.
type Router struct {
	authService    *service.Auth
	postService    *service.Post
	profileService *service.Profile
	contextManager model.ContextManager
	siteConfig     site.Config
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	postService *service.Post,
	profileService *service.Profile,
	contextManager model.ContextManager,
	siteConfig site.Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		postService:    postService,
		profileService: profileService,
		contextManager: contextManager,
		siteConfig:     siteConfig,
		logger:         logger,
	}
}

// Register builds the full handler chain. API routes sit next to a
// static file server and the fallback templated page handler; every
// request passes the logging middleware.
func (r *Router) Register() http.Handler {
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)
	authorize := middleware.NewAuthorize(r.contextManager, r.logger)
	logging := middleware.NewLogging(r.logger)

	authHandler := handler.NewAuth(r.authService, r.logger)
	userHandler := handler.NewUser(r.authService, r.contextManager, r.logger)
	profileHandler := handler.NewProfile(r.profileService, r.contextManager, r.logger)
	postHandler := handler.NewPost(r.postService, r.contextManager, r.logger)
	pages := render.NewPages(r.siteConfig, r.postService, r.logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sign_up", authHandler.SignUp)
	mux.HandleFunc("POST /api/sign_in", authHandler.SignIn)
	mux.HandleFunc("POST /api/sign_out", authHandler.SignOut)

	mux.Handle("GET /api/user",
		authenticate.Handle(http.HandlerFunc(userHandler.Get)))
	mux.Handle("PUT /api/user/password",
		authenticate.Handle(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("GET /api/user/picture",
		authenticate.Handle(http.HandlerFunc(profileHandler.GetPicture)))
	mux.Handle("PUT /api/user/picture",
		authenticate.Handle(http.HandlerFunc(profileHandler.SetPicture)))
	mux.Handle("DELETE /api/user/picture",
		authenticate.Handle(http.HandlerFunc(profileHandler.RemovePicture)))
	mux.Handle("POST /api/admin/users",
		authenticate.Handle(authorize.RequireAdmin(http.HandlerFunc(userHandler.Create))))

	mux.HandleFunc("GET /api/post", postHandler.Get)
	mux.Handle("POST /api/post",
		authenticate.Handle(http.HandlerFunc(postHandler.Create)))
	mux.Handle("DELETE /api/post",
		authenticate.Handle(http.HandlerFunc(postHandler.Delete)))

	mux.Handle("GET /static/",
		http.StripPrefix("/static/", http.FileServer(http.Dir(r.siteConfig.StaticDir()))))

	mux.Handle("/", pages)

	return logging.Handle(mux)
}
