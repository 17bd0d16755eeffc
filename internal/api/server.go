// Package api provides the HTTP API server and handlers for the recipebox server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/ratelimit"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/service"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
)

// Services groups the services the handlers call.
type Services struct {
	Auth       *service.AuthService
	Session    *service.SessionService
	User       *service.UserService
	Tag        *service.TagService
	Ingredient *service.IngredientService
	Recipe     *service.RecipeService
}

// Options configures the HTTP surface.
type Options struct {
	Version        string
	MediaURL       string   // prefix for image URLs and the media route
	MaxUploadSize  int64    // bytes accepted by upload-image
	AllowedOrigins []string // CORS origins
	AuthRateLimit  int      // login/refresh requests per minute per IP
	AuthRateBurst  int
}

func (o *Options) applyDefaults() {
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.MediaURL == "" {
		o.MediaURL = DefaultMediaURL
	}
	if o.MaxUploadSize <= 0 {
		o.MaxUploadSize = MaxUploadSize
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.AuthRateLimit <= 0 {
		o.AuthRateLimit = 20
	}
	if o.AuthRateBurst <= 0 {
		o.AuthRateBurst = 10
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	images          *images.Storage
	index           *search.SearchIndex
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	opts            Options
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// index and sseManager may be nil; health reports them as degraded.
func NewServer(
	st store.Store,
	services *Services,
	storage *images.Storage,
	index *search.SearchIndex,
	sseManager *sse.Manager,
	opts Options,
	log *slog.Logger,
) *Server {
	opts.applyDefaults()

	s := &Server{
		store:      st,
		services:   services,
		images:     storage,
		index:      index,
		sseManager: sseManager,
		opts:       opts,
		router:     chi.NewRouter(),
		logger:     log,
		authRateLimiter: ratelimit.New(
			ratelimit.PerInterval(opts.AuthRateLimit, time.Minute),
			opts.AuthRateBurst,
			10*time.Minute,
		),
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, s.resolveStreamUser, log)
	}

	// Middleware must be installed before huma registers its doc routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Recipebox API", opts.Version)
	humaConfig.Info.Description = "Personal recipe collections with tags, ingredients and images."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
	s.router.Use(s.requireAuth)
	s.router.Use(s.rateLimitAuth)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerTagRoutes()
	s.registerIngredientRoutes()
	s.registerRecipeRoutes()

	// Raw chi routes: multipart upload, file serving and the event stream.
	s.router.Post("/api/v1/recipe/recipes/{id}/upload-image", s.handleUploadImage)
	s.router.Get(mediaRoute(s.opts.MediaURL), s.handleServeMedia)
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}

// resolveStreamUser authenticates an SSE request from the context set by
// authMiddleware.
func (s *Server) resolveStreamUser(r *http.Request) (int64, error) {
	return GetUserID(r.Context())
}
