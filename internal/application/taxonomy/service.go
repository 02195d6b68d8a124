// Package taxonomy implements CRUD over the term tables: categories,
// cuisines, dietary tags, ingredients and measurements.
package taxonomy

import (
	"context"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// searchLimit caps ingredient name searches.
const searchLimit = 25

// Service implements taxonomy operations.
type Service struct {
	terms  outbound.TermRepository
	logger *zap.Logger
}

// NewService creates a taxonomy service.
func NewService(terms outbound.TermRepository, logger *zap.Logger) *Service {
	return &Service{terms: terms, logger: logger.Named("taxonomy")}
}

// List returns every term of a taxonomy ordered by name.
func (s *Service) List(ctx context.Context, tax outbound.Taxonomy) ([]meal.Term, error) {
	return s.terms.List(ctx, tax)
}

// Search returns terms matching a name substring.
func (s *Service) Search(ctx context.Context, tax outbound.Taxonomy, q string) ([]meal.Term, error) {
	if q == "" {
		return []meal.Term{}, nil
	}
	return s.terms.Search(ctx, tax, q, searchLimit)
}

// Get returns one term.
func (s *Service) Get(ctx context.Context, tax outbound.Taxonomy, id uint) (*meal.Term, error) {
	return s.terms.GetByID(ctx, tax, id)
}

// Create persists a new term.
func (s *Service) Create(ctx context.Context, tax outbound.Taxonomy, t *meal.Term) (*meal.Term, error) {
	created, err := s.terms.Create(ctx, tax, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("term created",
		zap.String("taxonomy", string(tax)),
		zap.Uint("id", created.ID),
		zap.String("name", created.Name),
	)
	return created, nil
}

// Update renames a term.
func (s *Service) Update(ctx context.Context, tax outbound.Taxonomy, t *meal.Term) (*meal.Term, error) {
	return s.terms.Update(ctx, tax, t)
}

// Delete removes a term.
func (s *Service) Delete(ctx context.Context, tax outbound.Taxonomy, id uint) error {
	if err := s.terms.Delete(ctx, tax, id); err != nil {
		return err
	}
	s.logger.Info("term deleted", zap.String("taxonomy", string(tax)), zap.Uint("id", id))
	return nil
}
