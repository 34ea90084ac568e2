package workflow

import (
	"errors"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests)
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func getConsignmentNote(tx *gorm.DB, id int) (*models.ConsignmentNote, error) {
	var note models.ConsignmentNote
	if err := tx.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &note, nil
}

func getConsignmentItems(tx *gorm.DB, noteId int) ([]models.ConsignmentItem, error) {
	var items []models.ConsignmentItem
	err := tx.Where("note_id = ?", noteId).Order("id").Find(&items).Error
	return items, err
}

func getConsignmentInstallments(tx *gorm.DB, noteId int) ([]models.ConsignmentInstallment, error) {
	var installments []models.ConsignmentInstallment
	err := tx.Where("note_id = ?", noteId).Order("sequence_no").Order("id").Find(&installments).Error
	return installments, err
}

// storageErr leaves not-found and domain errors alone and wraps everything else.
func storageErr(op string, err error) error {
	if err == nil || errors.Is(err, utils.ErrorRecordNotFound) || errors.Is(err, utils.ErrorLockNotObtained) {
		return err
	}
	return models.NewStorageError(op, err)
}
