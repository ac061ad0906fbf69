package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mervel/storefront/core/database"
	"github.com/mervel/storefront/orders/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type orderModel struct {
	ID              string  `gorm:"primaryKey"`
	UserID          *string `gorm:"index:idx_orders_user"`
	CustomerName    string  `gorm:"not null"`
	CustomerEmail   string  `gorm:"not null"`
	CustomerPhone   string  `gorm:"not null;index:idx_orders_phone"`
	ShippingAddress string  `gorm:"not null"`
	Notes           *string
	Items           string    `gorm:"type:text;default:'[]'"` // JSON
	Subtotal        int64     `gorm:"not null"`
	Discount        int64     `gorm:"default:0"`
	ShippingFee     int64     `gorm:"default:0"`
	Total           int64     `gorm:"not null"`
	Status          string    `gorm:"not null;default:'pending';index:idx_orders_status"`
	PaymentMethod   string    `gorm:"not null;default:'cod'"`
	CreatedAt       time.Time `gorm:"not null;index:idx_orders_created"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (orderModel) TableName() string {
	return "orders"
}

// --- Repository Implementation ---

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&orderModel{})
}

func (r *OrderGormRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = domain.PaymentCashOnDelivery
	}

	model, err := toOrderModel(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	result := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *OrderGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&orderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var m orderModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return fromOrderModel(m)
}

func (r *OrderGormRepository) FindByPhone(ctx context.Context, phone string, limit int) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Where("customer_phone = ?", phone).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []orderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromOrderModels(models)
}

func (r *OrderGormRepository) FindByPhoneSuffix(ctx context.Context, suffix string, limit int) ([]*domain.Order, error) {
	pattern := "%" + likeEscaper.Replace(suffix)

	query := r.db.WithContext(ctx)
	if database.IsPostgres(r.db) {
		query = query.Where(`customer_phone ILIKE ? ESCAPE '\'`, pattern)
	} else {
		query = query.Where(`LOWER(customer_phone) LIKE ? ESCAPE '\'`, strings.ToLower(pattern))
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []orderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromOrderModels(models)
}

// List returns orders newest first.
func (r *OrderGormRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Model(&orderModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []orderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromOrderModels(models)
}

func (r *OrderGormRepository) Count(ctx context.Context, status domain.Status) (int64, error) {
	query := r.db.WithContext(ctx).Model(&orderModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// --- Mappers ---

func toOrderModel(o *domain.Order) (orderModel, error) {
	items := o.Items
	if items == nil {
		items = []domain.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return orderModel{}, fmt.Errorf("marshal items: %w", err)
	}

	return orderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Items:           string(itemsJSON),
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func fromOrderModel(m orderModel) (*domain.Order, error) {
	o := &domain.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		ShippingAddress: m.ShippingAddress,
		Notes:           m.Notes,
		Subtotal:        m.Subtotal,
		Discount:        m.Discount,
		ShippingFee:     m.ShippingFee,
		Total:           m.Total,
		Status:          domain.Status(m.Status),
		PaymentMethod:   m.PaymentMethod,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %s: %w", m.ID, err)
		}
	}
	if o.Items == nil {
		o.Items = []domain.Item{}
	}
	return o, nil
}

func fromOrderModels(models []orderModel) ([]*domain.Order, error) {
	out := make([]*domain.Order, len(models))
	for i, m := range models {
		o, err := fromOrderModel(m)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}
