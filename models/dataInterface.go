package models

import (
	"time"
)

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

func (s Seller) GetId() int {
	return s.ID
}

func (s Seller) GetDefault(id int) Data {
	return Seller{
		ID:        id,
		Status:    SellerStatusInactive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// loader loading more than one model by one id
type RelatedData interface {
	GetReferenceId() int
}

func (i ConsignmentItem) GetReferenceId() int {
	return i.NoteId
}

func (i ConsignmentInstallment) GetReferenceId() int {
	return i.NoteId
}
