package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sharedlists/sharedlists/internal/api/handler"
	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/permission"
	"github.com/sharedlists/sharedlists/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger handler.DBPinger
	Version  string
	OpenAPI  *handler.OpenAPIHandler

	// FrontendOrigin is the only origin allowed to make credentialed
	// cross-origin calls. Empty disables CORS headers.
	FrontendOrigin string
	FrontendURL    string
	SecureCookies  bool
	// RateLimitAuth is the per-IP request budget per minute on /api/auth.
	// Zero disables the limit.
	RateLimitAuth int

	Resolver  middleware.IdentityResolver
	Login     handler.Authenticator
	Users     user.Repository
	APIKeys   *apikey.Service
	Pages     page.Repository
	Lists     list.Repository
	Authority *permission.Authority
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.FrontendOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{deps.FrontendOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.OpenAPI != nil {
		r.Get("/openapi.json", deps.OpenAPI.ServeHTTP)
	}

	authn := middleware.Authenticate(deps.Resolver)
	scoped := middleware.RequireScopes()

	authHandler := handler.NewAuthHandler(deps.Login, deps.Users, deps.FrontendURL, deps.SecureCookies)
	publicHandler := handler.NewPublicHandler(deps.Pages, deps.Lists)
	userHandler := handler.NewUserHandler(deps.Users)
	pageHandler := handler.NewPageHandler(deps.Pages, deps.Lists, deps.Authority)
	permissionHandler := handler.NewPermissionHandler(deps.Authority)
	listHandler := handler.NewListHandler(deps.Lists, deps.Authority)
	itemHandler := handler.NewItemHandler(deps.Lists, deps.Authority)
	apiKeyHandler := handler.NewAPIKeyHandler(deps.APIKeys)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if deps.RateLimitAuth > 0 {
				r.Use(httprate.LimitByIP(deps.RateLimitAuth, time.Minute))
			}
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
			r.With(authn, scoped).Get("/me", authHandler.Me)
		})

		r.Get("/public/{slug}", publicHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(scoped)

			r.Get("/users/search", userHandler.Search)

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", pageHandler.List)
				r.Post("/", pageHandler.Create)
				r.Route("/{pageID}", func(r chi.Router) {
					r.Get("/", pageHandler.Get)
					r.Patch("/", pageHandler.Update)
					r.Delete("/", pageHandler.Delete)
					r.Put("/public-slug", pageHandler.SetPublicSlug)

					r.Get("/permissions", permissionHandler.List)
					r.Post("/permissions", permissionHandler.Grant)
					r.Patch("/permissions/{permissionID}", permissionHandler.Update)
					r.Delete("/permissions/{permissionID}", permissionHandler.Revoke)

					r.Get("/lists", listHandler.List)
					r.Post("/lists", listHandler.Create)
					r.Get("/lists/{listID}", listHandler.Get)
					r.Patch("/lists/{listID}", listHandler.Update)
					r.Delete("/lists/{listID}", listHandler.Delete)
				})
			})

			r.Route("/lists/{listID}/items", func(r chi.Router) {
				r.Get("/", itemHandler.List)
				r.Post("/", itemHandler.Create)
				r.Get("/{itemID}", itemHandler.Get)
				r.Patch("/{itemID}", itemHandler.Update)
				r.Delete("/{itemID}", itemHandler.Delete)
			})

			r.Route("/settings/api-keys", func(r chi.Router) {
				r.Use(middleware.RequireSession())
				r.Get("/", apiKeyHandler.List)
				r.Post("/", apiKeyHandler.Create)
				r.Delete("/{keyID}", apiKeyHandler.Delete)
			})
		})
	})

	return r
}
