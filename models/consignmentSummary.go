package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsignmentNoteSummary is one row of the note list.
type ConsignmentNoteSummary struct {
	ID                 int               `json:"id"`
	Number             string            `json:"number"`
	SellerId           int               `json:"seller_id"`
	SellerName         string            `json:"seller_name"`
	IssueDate          time.Time         `json:"issue_date"`
	DueDate            *time.Time        `json:"due_date"`
	Origin             StockOrigin       `json:"origin"`
	Status             ConsignmentStatus `json:"status"`
	IsArchived         bool              `json:"archived"`
	ItemsTotal         int               `json:"items_total"`
	ItemsReturned      int               `json:"items_returned"`
	ItemsSold          int               `json:"items_sold"`
	OriginalTotal      decimal.Decimal   `json:"original_total"`
	ReturnedValue      decimal.Decimal   `json:"returned_value"`
	SoldValue          decimal.Decimal   `json:"sold_value"`
	TotalPaid          decimal.Decimal   `json:"total_paid"`
	OutstandingBalance decimal.Decimal   `json:"outstanding_balance"`
}

type NoteSummaryFilter struct {
	Archived bool
	SellerId *int
	Search   string
}

// SellerCard is the per-seller tile: how many notes are open and what they still owe.
type SellerCard struct {
	SellerId    int             `json:"seller_id"`
	SellerName  string          `json:"seller_name"`
	Phone       string          `json:"phone"`
	Status      SellerStatus    `json:"status"`
	OpenNotes   int             `json:"open_notes"`
	OpenBalance decimal.Decimal `json:"open_balance"`
}

type ReferenceQuantity struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type ConsignmentKPIs struct {
	ItemsOut       int                `json:"items_out"`
	ValueOut       decimal.Decimal    `json:"value_out"`
	ValueSold      decimal.Decimal    `json:"value_sold"`
	OpenBalance    decimal.Decimal    `json:"open_balance"`
	TopOut         *ReferenceQuantity `json:"top_out"`
	TopReturned    *ReferenceQuantity `json:"top_returned"`
	OpenNotesCount int                `json:"open_notes_count"`
}

// ReturnableItem is a line of an open note, tagged with the note it belongs to.
type ReturnableItem struct {
	ConsignmentItem
	NoteNumber string      `json:"note_number"`
	NoteOrigin StockOrigin `json:"note_origin"`
	Remaining  int         `json:"remaining_quantity"`
}

// ConsignmentNoteDetail is a note with its lines, installments and a freshly computed balance.
type ConsignmentNoteDetail struct {
	*ConsignmentNote
	Balance NoteBalance `json:"balance"`
}

type ReturnUpdate struct {
	ItemId           int `json:"item_id"`
	ReturnedQuantity int `json:"returned_quantity"`
}
