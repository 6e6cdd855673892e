package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleSeller   = "seller"

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

func ValidRole(r string) bool {
	return r == RoleCustomer || r == RoleAdmin || r == RoleSeller
}

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive || s == StatusBlocked
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	Status       string    `gorm:"not null"                 json:"status"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;not null"     json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `gorm:"not null"                 json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Count       uint    `json:"count"`
	CategoryID  uint    `gorm:"index"                    json:"category_id"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                 json:"id"`
	UserID    uint `gorm:"index;not null"             json:"user_id"`
	ProductID uint `gorm:"not null"                   json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type WishlistItem struct {
	ID        uint `gorm:"primaryKey"                                json:"id"`
	UserID    uint `gorm:"index:idx_wishlist_user_product,unique"    json:"user_id"`
	ProductID uint `gorm:"index:idx_wishlist_user_product,unique"    json:"product_id"`
}

const (
	OrderStatusNew       = "new"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	UserID    uint    `gorm:"index;not null" json:"user_id"`
	CreatedAt int64   `gorm:"not null"       json:"created_at"`
	Total     float64 `gorm:"not null"       json:"total"`
	Status    string  `gorm:"not null"       json:"status"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	UserID    uint    `gorm:"index;not null"             json:"user_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
	Price     float64 `gorm:"not null"                   json:"price"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	ProductID uint      `gorm:"index:idx_review_product_user,unique"   json:"product_id"`
	UserID    uint      `gorm:"index:idx_review_product_user,unique"   json:"user_id"`
	Rating    int       `gorm:"not null;check:rating>=1 AND rating<=5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
