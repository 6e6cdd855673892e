package repo

import (
	"context"

	"github.com/kmoroz/storefront/internal/models"
)

func (r *Repo) CreateReview(ctx context.Context, rev *models.Review) error {
	if err := r.DB.WithContext(ctx).Create(rev).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *Repo) ListReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *Repo) DeleteReview(ctx context.Context, id uint) error {
	tx := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
