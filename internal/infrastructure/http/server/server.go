// Package server wires the chi router and runs the HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/http/handlers"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/http/middleware"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// Handlers bundles every resource handler for route registration.
type Handlers struct {
	Recipes     *handlers.RecipeHandler
	UserMeals   *handlers.UserMealHandler
	Restaurants *handlers.RestaurantHandler
	Categories  *handlers.TaxonomyHandler
	Cuisines    *handlers.TaxonomyHandler
	Dietary     *handlers.TaxonomyHandler
	Ingredients *handlers.TaxonomyHandler
	Measures    *handlers.TaxonomyHandler
	Feedback    *handlers.FeedbackHandler
}

// Server is the HTTP server.
type Server struct {
	cfg    *config.Config
	srv    *http.Server
	logger *zap.Logger
}

// New builds the router and server.
func New(cfg *config.Config, h Handlers, verifier outbound.IdentityVerifier, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	r.Use(middleware.Identity(cfg.Auth.UserDataSecret, logger))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipes.List)
			r.Get("/list", h.Recipes.List)
			r.Get("/search", h.Recipes.List)
			r.Get("/random", h.Recipes.Random)
			r.Get("/group-values", h.Recipes.GroupValues)
			r.Get("/{id}", h.Recipes.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Post("/assign-initial-meals", h.Recipes.AssignInitialMeals)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(verifier))
				r.Post("/", h.Recipes.Create)
				r.Put("/{id}", h.Recipes.Update)
				r.Patch("/{id}/toggle-status", h.Recipes.ToggleStatus)
				r.Delete("/{id}", h.Recipes.Delete)

				r.Get("/{id}/groups", h.Recipes.Groups)
				r.Post("/{id}/groups", h.Recipes.CreateGroup)
				r.Put("/{id}/groups/{groupID}", h.Recipes.UpdateGroup)
				r.Delete("/{id}/groups/{groupID}", h.Recipes.DeleteGroup)
			})
		})

		r.Route("/user-meals", func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/", h.UserMeals.List)
			r.Get("/list", h.UserMeals.List)
			r.Get("/search", h.UserMeals.List)
			r.Get("/random", h.UserMeals.Random)
			r.Get("/favourites", h.UserMeals.Favourites)
			r.Get("/top-meals", h.UserMeals.TopMeals)
			r.Post("/", h.UserMeals.Create)
			r.Post("/add-from-recipe/{recipeID}", h.UserMeals.AddFromRecipe)
			r.Get("/{id}", h.UserMeals.Get)
			r.Put("/{id}", h.UserMeals.Update)
			r.Patch("/{id}/toggle-status", h.UserMeals.ToggleStatus)
			r.Post("/{id}/increment-tally", h.UserMeals.IncrementTally)
			r.Delete("/{id}", h.UserMeals.Delete)

			r.Get("/{id}/groups", h.UserMeals.Groups)
			r.Post("/{id}/groups", h.UserMeals.CreateGroup)
			r.Put("/{id}/groups/{groupID}", h.UserMeals.UpdateGroup)
			r.Delete("/{id}/groups/{groupID}", h.UserMeals.DeleteGroup)
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/nearby", h.Restaurants.Nearby)
			r.Get("/nearby-place/{placeID}", h.Restaurants.NearbyPlace)
			r.Get("/reverse-geocode", h.Restaurants.ReverseGeocode)
			r.Get("/address-suggestions", h.Restaurants.AddressSuggestions)
			r.Get("/photos/{placeID}", h.Restaurants.Photos)
			r.Get("/photo-proxy", h.Restaurants.PhotoProxy)
			r.Get("/{placeID}/photos", h.Restaurants.Photos)
			r.Get("/photo/{reference}", h.Restaurants.Photo)
		})

		taxonomies := map[string]*handlers.TaxonomyHandler{
			"/categories":   h.Categories,
			"/cuisines":     h.Cuisines,
			"/dietary":      h.Dietary,
			"/ingredients":  h.Ingredients,
			"/measurements": h.Measures,
		}
		for path, th := range taxonomies {
			th := th
			r.Route(path, func(r chi.Router) {
				r.Get("/", th.List)
				r.Get("/search", th.Search)
				r.Get("/{id}", th.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(verifier))
					r.Post("/", th.Create)
					r.Put("/{id}", th.Update)
					r.Delete("/{id}", th.Delete)
				})
			})
		}

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", h.Feedback.Submit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(verifier))
				r.Get("/", h.Feedback.List)
				r.Get("/{id}", h.Feedback.Get)
				r.Patch("/{id}", h.Feedback.SetResolved)
			})
		})
	})

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger.Named("server"),
	}
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
