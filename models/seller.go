package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/utils"
	"gorm.io/gorm"
)

type Seller struct {
	ID        int          `gorm:"primary_key" json:"id"`
	Name      string       `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Phone     string       `gorm:"size:30" json:"phone"`
	Email     string       `gorm:"size:100" json:"email"`
	Address   string       `gorm:"size:255" json:"address"`
	Status    SellerStatus `gorm:"size:10;not null;default:active" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSeller struct {
	Name    string        `json:"name" binding:"required"`
	Phone   string        `json:"phone"`
	Email   string        `json:"email" binding:"omitempty,email"`
	Address string        `json:"address"`
	Status  *SellerStatus `json:"status"`
	Notes   string        `json:"notes"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewSeller) validate(ctx context.Context, db *gorm.DB, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Name == "" {
		return NewValidationError("seller name is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return NewValidationError("invalid seller status")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, config.ChatDefaultRegion()); err != nil {
			return NewValidationError("invalid phone number: %s", err.Error())
		}
	}
	var count int64
	err := db.WithContext(ctx).Model(&Seller{}).
		Where("name = ?", input.Name).
		Where("id <> ?", id).
		Count(&count).Error
	if err != nil {
		return NewStorageError("check seller name", err)
	}
	if count > 0 {
		return NewValidationError("seller %s already exists", input.Name)
	}
	return nil
}

func CreateSeller(ctx context.Context, db *gorm.DB, input *NewSeller) (*Seller, error) {
	if err := input.validate(ctx, db, 0); err != nil {
		return nil, err
	}

	seller := Seller{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
		Status:  utils.DereferencePtr(input.Status, SellerStatusActive),
		Notes:   input.Notes,
	}
	if err := db.WithContext(ctx).Create(&seller).Error; err != nil {
		return nil, NewStorageError("create seller", err)
	}
	return &seller, nil
}

func UpdateSeller(ctx context.Context, db *gorm.DB, id int, input *NewSeller) (*Seller, error) {
	seller, err := GetSeller(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":    input.Name,
		"Phone":   input.Phone,
		"Email":   input.Email,
		"Address": input.Address,
		"Notes":   input.Notes,
	}
	if input.Status != nil {
		updates["Status"] = *input.Status
	}
	if err := db.WithContext(ctx).Model(seller).Updates(updates).Error; err != nil {
		return nil, NewStorageError("update seller", err)
	}
	return GetSeller(ctx, db, id)
}

// ToggleSellerActive flips a seller between active and inactive.
func ToggleSellerActive(ctx context.Context, db *gorm.DB, id int) (*Seller, error) {
	seller, err := GetSeller(ctx, db, id)
	if err != nil {
		return nil, err
	}
	next := SellerStatusInactive
	if seller.Status == SellerStatusInactive {
		next = SellerStatusActive
	}
	if err := db.WithContext(ctx).Model(seller).Update("Status", next).Error; err != nil {
		return nil, NewStorageError("toggle seller", err)
	}
	seller.Status = next
	return seller, nil
}

func GetSeller(ctx context.Context, db *gorm.DB, id int) (*Seller, error) {
	var seller Seller
	err := db.WithContext(ctx).First(&seller, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, NewStorageError("get seller", err)
	}
	return &seller, nil
}

func GetSellers(ctx context.Context, db *gorm.DB, name *string, status *SellerStatus) ([]*Seller, error) {
	var results []*Seller

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*name)+"%")
	}
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, NewStorageError("list sellers", err)
	}
	return results, nil
}

func GetSellersByIds(ctx context.Context, db *gorm.DB, ids []int) ([]*Seller, error) {
	var results []*Seller
	if len(ids) == 0 {
		return results, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(ids)).Find(&results).Error; err != nil {
		return nil, NewStorageError("get sellers", err)
	}
	return results, nil
}
