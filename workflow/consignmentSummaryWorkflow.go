package workflow

import (
	"context"
	"strings"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	consignmentKPIsCacheKey = "Consignment:KPIs"
	sellerCardsCacheKey     = "Consignment:SellerCards"
)

type sellerOpenTotals struct {
	SellerId    int
	OpenNotes   int
	OpenBalance decimal.Decimal
}

type openNoteTotals struct {
	OpenNotesCount int
	ValueOut       decimal.Decimal
	OpenBalance    decimal.Decimal
}

type soldTotals struct {
	ValueSold decimal.Decimal
}

type itemsOutTotals struct {
	ItemsOut int
}

// InvalidateConsignmentCache drops every cached aggregate after a write.
func InvalidateConsignmentCache(logger *logrus.Logger) {
	if err := config.RemoveRedisKey(consignmentKPIsCacheKey, sellerCardsCacheKey); err != nil {
		config.LogError(logger, "consignmentSummaryWorkflow.go", "InvalidateConsignmentCache", "RemoveRedisKey", nil, err)
	}
}

// RefreshNoteTotals recomputes the balance from raw lines and installments and stores it on the header.
// Call it inside the transaction that changed them.
func RefreshNoteTotals(tx *gorm.DB, noteId int) (models.NoteBalance, error) {
	items, err := getConsignmentItems(tx, noteId)
	if err != nil {
		return models.NoteBalance{}, err
	}
	installments, err := getConsignmentInstallments(tx, noteId)
	if err != nil {
		return models.NoteBalance{}, err
	}
	balance := models.CalculateBalance(items, installments)
	if err := writeNoteTotals(tx, noteId, balance); err != nil {
		return models.NoteBalance{}, err
	}
	return balance, nil
}

func writeNoteTotals(tx *gorm.DB, noteId int, balance models.NoteBalance) error {
	return tx.Model(&models.ConsignmentNote{}).Where("id = ?", noteId).Updates(map[string]interface{}{
		"original_total":      balance.OriginalTotal,
		"returned_value":      balance.ReturnedValue,
		"current_payable":     balance.CurrentPayable,
		"total_paid":          balance.TotalPaid,
		"outstanding_balance": balance.OutstandingBalance,
	}).Error
}

// ListNoteSummaries builds the note list from raw lines and installments.
func ListNoteSummaries(ctx context.Context, db *gorm.DB, filter models.NoteSummaryFilter) ([]models.ConsignmentNoteSummary, error) {
	var notes []models.ConsignmentNote

	dbCtx := db.WithContext(ctx).
		Select("consignment_notes.*").
		Joins("JOIN sellers ON sellers.id = consignment_notes.seller_id").
		Where("consignment_notes.is_archived = ?", filter.Archived)
	if filter.SellerId != nil {
		dbCtx = dbCtx.Where("consignment_notes.seller_id = ?", *filter.SellerId)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		dbCtx = dbCtx.Where("LOWER(consignment_notes.number) LIKE ? OR LOWER(sellers.name) LIKE ?", like, like)
	}
	err := dbCtx.
		Preload("Seller").
		Preload("Items").
		Preload("Installments").
		Order("consignment_notes.created_at DESC").Order("consignment_notes.id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, storageErr("list consignment notes", err)
	}

	summaries := make([]models.ConsignmentNoteSummary, 0, len(notes))
	for i := range notes {
		summaries = append(summaries, summarizeNote(&notes[i]))
	}
	return summaries, nil
}

func summarizeNote(note *models.ConsignmentNote) models.ConsignmentNoteSummary {
	balance := note.Balance()
	summary := models.ConsignmentNoteSummary{
		ID:                 note.ID,
		Number:             note.Number,
		SellerId:           note.SellerId,
		IssueDate:          note.IssueDate,
		DueDate:            note.DueDate,
		Origin:             note.Origin,
		Status:             note.Status,
		IsArchived:         note.IsArchived,
		OriginalTotal:      balance.OriginalTotal,
		ReturnedValue:      balance.ReturnedValue,
		SoldValue:          balance.SoldValue(),
		TotalPaid:          balance.TotalPaid,
		OutstandingBalance: balance.OutstandingBalance,
	}
	if note.Seller != nil {
		summary.SellerName = note.Seller.Name
	}
	for _, item := range note.Items {
		summary.ItemsTotal += item.Quantity
		summary.ItemsReturned += item.ReturnedQuantity
	}
	summary.ItemsSold = summary.ItemsTotal - summary.ItemsReturned
	return summary
}

// GetSellerCards reads the cached header totals of open notes, grouped by seller.
func GetSellerCards(ctx context.Context, db *gorm.DB, logger *logrus.Logger) ([]models.SellerCard, error) {
	var cards []models.SellerCard
	if ok, err := config.GetRedisObject(sellerCardsCacheKey, &cards); err != nil {
		config.LogError(logger, "consignmentSummaryWorkflow.go", "GetSellerCards", "GetRedisObject", nil, err)
	} else if ok {
		return cards, nil
	}

	sellers, err := models.GetSellers(ctx, db, nil, nil)
	if err != nil {
		return nil, err
	}

	var aggs []sellerOpenTotals
	err = db.WithContext(ctx).Model(&models.ConsignmentNote{}).
		Select("seller_id, COUNT(*) AS open_notes, COALESCE(SUM(outstanding_balance), 0) AS open_balance").
		Where("status = ? AND is_archived = ?", models.ConsignmentStatusOpen, false).
		Group("seller_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, storageErr("seller cards", err)
	}
	bySeller := make(map[int]int, len(aggs))
	for i, a := range aggs {
		bySeller[a.SellerId] = i
	}

	cards = make([]models.SellerCard, 0, len(sellers))
	for _, s := range sellers {
		card := models.SellerCard{
			SellerId:    s.ID,
			SellerName:  s.Name,
			Phone:       s.Phone,
			Status:      s.Status,
			OpenBalance: decimal.Zero,
		}
		if i, ok := bySeller[s.ID]; ok {
			card.OpenNotes = aggs[i].OpenNotes
			card.OpenBalance = aggs[i].OpenBalance
		}
		cards = append(cards, card)
	}

	if err := config.SetRedisObject(sellerCardsCacheKey, cards, config.CacheLifespan()); err != nil {
		config.LogError(logger, "consignmentSummaryWorkflow.go", "GetSellerCards", "SetRedisObject", nil, err)
	}
	return cards, nil
}

// GetConsignmentKPIs aggregates what is out with sellers right now. Cached until the next write.
func GetConsignmentKPIs(ctx context.Context, db *gorm.DB, logger *logrus.Logger) (*models.ConsignmentKPIs, error) {
	var kpis models.ConsignmentKPIs
	if ok, err := config.GetRedisObject(consignmentKPIsCacheKey, &kpis); err != nil {
		config.LogError(logger, "consignmentSummaryWorkflow.go", "GetConsignmentKPIs", "GetRedisObject", nil, err)
	} else if ok {
		return &kpis, nil
	}

	openNotes := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("n.status = ? AND n.is_archived = ?", models.ConsignmentStatusOpen, false)
	}

	var totals openNoteTotals
	err := db.WithContext(ctx).Table("consignment_notes AS n").
		Select("COUNT(*) AS open_notes_count, COALESCE(SUM(n.current_payable), 0) AS value_out, COALESCE(SUM(n.outstanding_balance), 0) AS open_balance").
		Scopes(openNotes).
		Scan(&totals).Error
	if err != nil {
		return nil, storageErr("consignment kpis", err)
	}

	var sold soldTotals
	err = db.WithContext(ctx).Table("consignment_notes AS n").
		Select("COALESCE(SUM(n.current_payable), 0) AS value_sold").
		Where("n.status = ?", models.ConsignmentStatusClosed).
		Scan(&sold).Error
	if err != nil {
		return nil, storageErr("consignment kpis", err)
	}

	var itemsOut itemsOutTotals
	err = db.WithContext(ctx).Table("consignment_items AS i").
		Select("COALESCE(SUM(i.quantity - i.returned_quantity), 0) AS items_out").
		Joins("JOIN consignment_notes n ON n.id = i.note_id").
		Scopes(openNotes).
		Scan(&itemsOut).Error
	if err != nil {
		return nil, storageErr("consignment kpis", err)
	}

	topOut, err := topReference(ctx, db, "SUM(i.quantity - i.returned_quantity)", openNotes)
	if err != nil {
		return nil, storageErr("consignment kpis", err)
	}
	topReturned, err := topReference(ctx, db, "SUM(i.returned_quantity)", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("n.status <> ?", models.ConsignmentStatusCancelled)
	})
	if err != nil {
		return nil, storageErr("consignment kpis", err)
	}

	kpis = models.ConsignmentKPIs{
		ItemsOut:       itemsOut.ItemsOut,
		ValueOut:       totals.ValueOut,
		ValueSold:      sold.ValueSold,
		OpenBalance:    totals.OpenBalance,
		OpenNotesCount: totals.OpenNotesCount,
		TopOut:         topOut,
		TopReturned:    topReturned,
	}
	if err := config.SetRedisObject(consignmentKPIsCacheKey, kpis, config.CacheLifespan()); err != nil {
		config.LogError(logger, "consignmentSummaryWorkflow.go", "GetConsignmentKPIs", "SetRedisObject", nil, err)
	}
	return &kpis, nil
}

// topReference returns the reference with the largest aggregate, or nil when nothing qualifies.
func topReference(ctx context.Context, db *gorm.DB, aggregate string, scope func(*gorm.DB) *gorm.DB) (*models.ReferenceQuantity, error) {
	var rows []models.ReferenceQuantity
	err := db.WithContext(ctx).Table("consignment_items AS i").
		Select("i.reference AS reference, COALESCE(MAX(p.name), '') AS name, "+aggregate+" AS quantity").
		Joins("JOIN consignment_notes n ON n.id = i.note_id").
		Joins("LEFT JOIN products p ON p.reference = i.reference").
		Scopes(scope).
		Group("i.reference").
		Having(aggregate + " > 0").
		Order("quantity DESC").Order("reference").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}
