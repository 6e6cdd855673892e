package repo

import (
	"context"

	"github.com/kmoroz/storefront/internal/models"
)

func (r *Repo) GetWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist is idempotent: re-adding a product returns the existing row.
func (r *Repo) AddToWishlist(ctx context.Context, userID, productID uint) (*models.WishlistItem, error) {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		FirstOrCreate(&item)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &item, nil
}

func (r *Repo) RemoveFromWishlist(ctx context.Context, userID, itemID uint) error {
	tx := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.WishlistItem{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
