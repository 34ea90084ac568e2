package models

import (
	"encoding/json"
	"errors"
)

type SellerStatus string

const (
	SellerStatusActive   SellerStatus = "active"
	SellerStatusInactive SellerStatus = "inactive"
)

func (t SellerStatus) IsValid() bool {
	switch t {
	case SellerStatusActive, SellerStatusInactive:
		return true
	}
	return false
}

// convert input to enum type
func (t *SellerStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("seller status must be string")
	}
	if !SellerStatus(str).IsValid() {
		return errors.New("invalid seller status")
	}
	*t = SellerStatus(str)
	return nil
}

// StockOrigin names the inventory counter a note draws from and returns to.
type StockOrigin string

const (
	StockOriginStore   StockOrigin = "store"
	StockOriginFactory StockOrigin = "factory"
)

func (t StockOrigin) IsValid() bool {
	switch t {
	case StockOriginStore, StockOriginFactory:
		return true
	}
	return false
}

func (t *StockOrigin) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("stock origin must be string")
	}
	if !StockOrigin(str).IsValid() {
		return errors.New("invalid stock origin")
	}
	*t = StockOrigin(str)
	return nil
}

type ConsignmentStatus string

const (
	ConsignmentStatusOpen      ConsignmentStatus = "open"
	ConsignmentStatusClosed    ConsignmentStatus = "closed"
	ConsignmentStatusCancelled ConsignmentStatus = "cancelled"
)

func (t ConsignmentStatus) IsValid() bool {
	switch t {
	case ConsignmentStatusOpen, ConsignmentStatusClosed, ConsignmentStatusCancelled:
		return true
	}
	return false
}

func (t *ConsignmentStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("consignment status must be string")
	}
	if !ConsignmentStatus(str).IsValid() {
		return errors.New("invalid consignment status")
	}
	*t = ConsignmentStatus(str)
	return nil
}

// allowed status changes; cancelled is terminal
var consignmentStatusTransitions = map[ConsignmentStatus][]ConsignmentStatus{
	ConsignmentStatusOpen:   {ConsignmentStatusClosed, ConsignmentStatusCancelled},
	ConsignmentStatusClosed: {ConsignmentStatusOpen, ConsignmentStatusCancelled},
}

// CanTransitionTo reports whether a note may move from t to next. Staying put is always allowed.
func (t ConsignmentStatus) CanTransitionTo(next ConsignmentStatus) bool {
	if t == next {
		return true
	}
	for _, allowed := range consignmentStatusTransitions[t] {
		if allowed == next {
			return true
		}
	}
	return false
}
