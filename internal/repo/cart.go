package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kmoroz/storefront/internal/models"
)

func (r *Repo) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart accumulates quantity when the product is already in the cart.
func (r *Repo) AddToCart(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item models.CartItem
	tx := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item)
	if tx.Error == nil {
		item.Quantity += quantity
		if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := r.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveOneFromCart decrements the row, deleting it at quantity one.
func (r *Repo) RemoveOneFromCart(ctx context.Context, userID, itemID uint) (*models.CartItem, bool, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if notFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if item.Quantity > 1 {
		item.Quantity--
		if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, false, err
		}
		return &item, false, nil
	}

	if err := r.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

func (r *Repo) RemoveItemFromCart(ctx context.Context, userID, itemID uint) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error
}

// MakeOrder turns the user's cart into an order inside one transaction and
// clears the cart. Prices are captured at order time.
func (r *Repo) MakeOrder(ctx context.Context, userID uint) (*models.Order, []models.OrderItem, error) {
	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var total float64
		prices := make(map[uint]float64, len(items))
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if notFound(err) {
					return ErrNotFound
				}
				return err
			}
			prices[it.ProductID] = p.Price
			total += float64(it.Quantity) * p.Price
		}

		order = models.Order{
			UserID:    userID,
			Total:     total,
			Status:    models.OrderStatusNew,
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderItems = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			oi := models.OrderItem{
				OrderID:   order.ID,
				UserID:    userID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     prices[it.ProductID],
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			orderItems = append(orderItems, oi)
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	return &order, orderItems, nil
}
