package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrNotFound = errors.New("order not found")

type GormRepo struct {
	DB *gorm.DB
}

// Patch lists the mutable order fields. Nil fields are left alone.
type Patch struct {
	Status    *models.Status
	UpdatedAt time.Time
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

// Insert stores the order and its items in one transaction and returns the
// generated primary key.
func (r *GormRepo) Insert(ctx context.Context, order *models.Order) (uint, error) {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *GormRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Where("order_id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).
		Where("customer_email = ?", email).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Patch merges the non-nil fields into the stored row. Concurrent patches are
// last-write-wins.
func (r *GormRepo) Patch(ctx context.Context, id uint, p Patch) error {
	updates := map[string]any{"updated_at": p.UpdatedAt}
	if p.Status != nil {
		updates["status"] = string(*p.Status)
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll scans every order without items. Only the stats aggregate uses it.
func (r *GormRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) withItems(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
