package repository

import (
	"context"
	"strings"

	"github.com/betonpro/tradelinkpro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort keys accepted by ListQuery.
const (
	SortDefault  = ""
	SortName     = "name"
	SortCategory = "category"
	SortRating   = "rating"
)

// ListQuery narrows an owner-scoped listing. All filters combine with
// logical AND; Search matches name, category and description
// case-insensitively.
type ListQuery struct {
	Search     string
	Sort       string
	Ratings    []string
	Categories []string
}

type SupplierRepository interface {
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]*model.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]*model.Supplier, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("user_id = ?", ownerID)

	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ?",
			like, like, like,
		)
	}
	if len(q.Ratings) > 0 {
		tx = tx.Where("rating IN ?", q.Ratings)
	}
	if len(q.Categories) > 0 {
		tx = tx.Where("category IN ?", q.Categories)
	}

	switch q.Sort {
	case SortCategory:
		tx = tx.Order("LOWER(category) ASC").Order("LOWER(name) ASC")
	case SortRating:
		// green first, then yellow, then red, anything else last
		tx = tx.Order("CASE rating WHEN 'green' THEN 1 WHEN 'yellow' THEN 2 WHEN 'red' THEN 3 ELSE 4 END").
			Order("created_at DESC").
			Order("LOWER(name) ASC")
	case SortName:
		tx = tx.Order("LOWER(name) ASC")
	default:
		tx = tx.Order("created_at DESC").Order("LOWER(name) ASC")
	}

	var suppliers []*model.Supplier
	if err := tx.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&supplier).Error; err != nil {
		return nil, err
	}

	return &supplier, nil
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepository) Update(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Supplier{}, "id = ?", id).Error
}
