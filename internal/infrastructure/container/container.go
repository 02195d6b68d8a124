// Package container wires the application with fx.
package container

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	gormlib "gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/application/feedback"
	"github.com/JamieKoz/platepicker-api/internal/application/listing"
	"github.com/JamieKoz/platepicker-api/internal/application/recipe"
	"github.com/JamieKoz/platepicker-api/internal/application/restaurant"
	"github.com/JamieKoz/platepicker-api/internal/application/tally"
	"github.com/JamieKoz/platepicker-api/internal/application/taxonomy"
	"github.com/JamieKoz/platepicker-api/internal/application/usermeal"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/cache"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/email"
	httpserver "github.com/JamieKoz/platepicker-api/internal/infrastructure/http/server"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/http/handlers"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/identity"
	gormrepo "github.com/JamieKoz/platepicker-api/internal/infrastructure/persistence/gorm"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/persistence/postgres"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/places/google"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	"github.com/JamieKoz/platepicker-api/pkg/logger"
)

// Module assembles every provider and the server lifecycle.
var Module = fx.Options(
	fx.Provide(
		config.Load,
		newLogger,
		postgres.NewConnection,
		cache.NewRedisClient,

		gormrepo.NewRecipeRepository,
		gormrepo.NewUserMealRepository,
		gormrepo.NewTallyRepository,
		gormrepo.NewTermRepository,
		gormrepo.NewFeedbackRepository,

		identity.NewProviderVerifier,
		email.NewMailer,
		newPlacesClient,

		newListingEngine,
		recipe.NewService,
		usermeal.NewService,
		newTallyService,
		newRestaurantService,
		taxonomy.NewService,
		newFeedbackService,

		handlers.NewRecipeHandler,
		handlers.NewUserMealHandler,
		handlers.NewRestaurantHandler,
		handlers.NewFeedbackHandler,
		newHandlerSet,
		httpserver.New,
	),
	fx.Invoke(registerLifecycle),
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.IsDevelopment(),
	})
}

func newPlacesClient(cfg *config.Config, cacheRepo outbound.CacheRepository, log *zap.Logger) outbound.PlacesClient {
	return google.NewCachingClient(google.NewClient(cfg, log), cacheRepo, log)
}

func newListingEngine(cfg *config.Config, log *zap.Logger) *listing.Engine {
	return listing.NewEngine(cfg.App.PublicURL, log)
}

func newTallyService(
	tallies outbound.TallyRepository,
	meals outbound.UserMealRepository,
	verifier outbound.IdentityVerifier,
	log *zap.Logger,
) *tally.Service {
	return tally.NewService(tallies, meals, verifier, log)
}

func newRestaurantService(cfg *config.Config, places outbound.PlacesClient, log *zap.Logger) *restaurant.Service {
	return restaurant.NewService(places, cfg.Google.PageWait, log)
}

func newFeedbackService(
	repo outbound.FeedbackRepository,
	mail outbound.MailSender,
	cfg *config.Config,
	log *zap.Logger,
) *feedback.Service {
	return feedback.NewService(repo, mail, cfg.Mail.FeedbackTo, log)
}

func newHandlerSet(
	recipes *handlers.RecipeHandler,
	meals *handlers.UserMealHandler,
	restaurants *handlers.RestaurantHandler,
	fb *handlers.FeedbackHandler,
	tax *taxonomy.Service,
	log *zap.Logger,
) httpserver.Handlers {
	return httpserver.Handlers{
		Recipes:     recipes,
		UserMeals:   meals,
		Restaurants: restaurants,
		Feedback:    fb,
		Categories:  handlers.NewTaxonomyHandler(tax, outbound.TaxonomyCategory, log),
		Cuisines:    handlers.NewTaxonomyHandler(tax, outbound.TaxonomyCuisine, log),
		Dietary:     handlers.NewTaxonomyHandler(tax, outbound.TaxonomyDietary, log),
		Ingredients: handlers.NewTaxonomyHandler(tax, outbound.TaxonomyIngredient, log),
		Measures:    handlers.NewTaxonomyHandler(tax, outbound.TaxonomyMeasurement, log),
	}
}

func registerLifecycle(lc fx.Lifecycle, srv *httpserver.Server, db *gormlib.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				return sqlDB.Close()
			}
			return nil
		},
	})
}
