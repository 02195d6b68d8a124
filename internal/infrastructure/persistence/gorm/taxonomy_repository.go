package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// TermRepository implements outbound.TermRepository. One
// implementation serves every taxonomy table; the table is selected
// per call from the Taxonomy key.
type TermRepository struct {
	db *gorm.DB
}

// NewTermRepository creates a new taxonomy term repository
func NewTermRepository(db *gorm.DB) outbound.TermRepository {
	return &TermRepository{db: db}
}

func (r *TermRepository) table(ctx context.Context, tax outbound.Taxonomy) *gorm.DB {
	return r.db.WithContext(ctx).Table(string(tax))
}

// List returns every term of the taxonomy ordered by name.
func (r *TermRepository) List(ctx context.Context, tax outbound.Taxonomy) ([]meal.Term, error) {
	var models []TermModel
	if err := r.table(ctx, tax).Order("name").Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list "+string(tax), err)
	}
	out := make([]meal.Term, len(models))
	for i, m := range models {
		out[i] = termToDomain(m)
	}
	return out, nil
}

// Search returns terms whose name contains q, case-insensitively.
func (r *TermRepository) Search(ctx context.Context, tax outbound.Taxonomy, q string, limit int) ([]meal.Term, error) {
	var models []TermModel
	err := r.table(ctx, tax).
		Where("LOWER(name) LIKE ?", searchPattern(q)).
		Order("name").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("search "+string(tax), err)
	}
	out := make([]meal.Term, len(models))
	for i, m := range models {
		out[i] = termToDomain(m)
	}
	return out, nil
}

// GetByID returns one term.
func (r *TermRepository) GetByID(ctx context.Context, tax outbound.Taxonomy, id uint) (*meal.Term, error) {
	var model TermModel
	if err := r.table(ctx, tax).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(string(tax) + " term")
		}
		return nil, apperrors.NewDatabaseError("get "+string(tax), err)
	}
	t := termToDomain(model)
	return &t, nil
}

// Create persists a new term.
func (r *TermRepository) Create(ctx context.Context, tax outbound.Taxonomy, t *meal.Term) (*meal.Term, error) {
	model := TermModel{Name: t.Name, Abbreviation: t.Abbreviation}
	if err := r.table(ctx, tax).Create(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create "+string(tax), err)
	}
	created := termToDomain(model)
	return &created, nil
}

// Update renames a term.
func (r *TermRepository) Update(ctx context.Context, tax outbound.Taxonomy, t *meal.Term) (*meal.Term, error) {
	res := r.table(ctx, tax).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"name":         t.Name,
		"abbreviation": t.Abbreviation,
	})
	if res.Error != nil {
		return nil, apperrors.NewDatabaseError("update "+string(tax), res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError(string(tax) + " term")
	}
	return r.GetByID(ctx, tax, t.ID)
}

// Delete removes a term.
func (r *TermRepository) Delete(ctx context.Context, tax outbound.Taxonomy, id uint) error {
	res := r.table(ctx, tax).Where("id = ?", id).Delete(&TermModel{})
	if res.Error != nil {
		return apperrors.NewDatabaseError("delete "+string(tax), res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(string(tax) + " term")
	}
	return nil
}
