package reports

import (
	"github.com/maluks/consignment_backend/models"
	"github.com/xuri/excelize/v2"
)

const (
	notesSheet        = "Notas"
	itemsSheet        = "Itens"
	installmentsSheet = "Parcelas"
)

var noteHeadings = []interface{}{
	"Número", "Vendedora", "Emissão", "Vencimento", "Origem", "Status", "Arquivada",
	"Peças", "Devolvidas", "Vendidas",
	"Total Original", "Devolvido", "Vendido", "Pago", "Saldo",
}

var itemHeadings = []interface{}{
	"Nota", "Ref.", "Cor", "Tam.", "Qtd", "Devol.", "Rest.", "Valor Unit.", "Subtotal",
}

var installmentHeadings = []interface{}{
	"Nota", "Parcela", "Vencimento", "Valor", "Pago", "Quitada", "Data Pgto.",
}

// ExportNoteSummaries builds a workbook with one row per note, plus a sheet of lines and a sheet of
// installments when those are given. items and installments are keyed by note id.
func ExportNoteSummaries(rows []models.ConsignmentNoteSummary, items map[int][]*models.ConsignmentItem, installments map[int][]*models.ConsignmentInstallment) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", notesSheet); err != nil {
		return nil, exportErr(err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, exportErr(err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, exportErr(err)
	}

	if err := writeRow(f, notesSheet, 1, noteHeadings); err != nil {
		return nil, exportErr(err)
	}
	for i, r := range rows {
		due := ""
		if r.DueDate != nil {
			due = formatDate(*r.DueDate)
		}
		archived := "Não"
		if r.IsArchived {
			archived = "Sim"
		}
		err := writeRow(f, notesSheet, i+2, []interface{}{
			r.Number, r.SellerName, formatDate(r.IssueDate), due, originLabel(r.Origin), statusLabel(r.Status), archived,
			r.ItemsTotal, r.ItemsReturned, r.ItemsSold,
			r.OriginalTotal.InexactFloat64(), r.ReturnedValue.InexactFloat64(), r.SoldValue.InexactFloat64(),
			r.TotalPaid.InexactFloat64(), r.OutstandingBalance.InexactFloat64(),
		})
		if err != nil {
			return nil, exportErr(err)
		}
	}
	if err := styleSheet(f, notesSheet, len(noteHeadings), headerStyle, moneyStyle, "K", "O"); err != nil {
		return nil, exportErr(err)
	}

	if len(items) > 0 {
		if err := writeItemsSheet(f, rows, items, headerStyle, moneyStyle); err != nil {
			return nil, exportErr(err)
		}
	}
	if len(installments) > 0 {
		if err := writeInstallmentsSheet(f, rows, installments, headerStyle, moneyStyle); err != nil {
			return nil, exportErr(err)
		}
	}
	return f, nil
}

func writeItemsSheet(f *excelize.File, rows []models.ConsignmentNoteSummary, items map[int][]*models.ConsignmentItem, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}
	if err := writeRow(f, itemsSheet, 1, itemHeadings); err != nil {
		return err
	}
	rowNo := 2
	for _, r := range rows {
		for _, item := range items[r.ID] {
			err := writeRow(f, itemsSheet, rowNo, []interface{}{
				r.Number, item.Reference, item.Color, item.Size,
				item.Quantity, item.ReturnedQuantity, item.RemainingQuantity(),
				item.UnitPrice.InexactFloat64(), item.PayableValue().InexactFloat64(),
			})
			if err != nil {
				return err
			}
			rowNo++
		}
	}
	return styleSheet(f, itemsSheet, len(itemHeadings), headerStyle, moneyStyle, "H", "I")
}

func writeInstallmentsSheet(f *excelize.File, rows []models.ConsignmentNoteSummary, installments map[int][]*models.ConsignmentInstallment, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(installmentsSheet); err != nil {
		return err
	}
	if err := writeRow(f, installmentsSheet, 1, installmentHeadings); err != nil {
		return err
	}
	rowNo := 2
	for _, r := range rows {
		for _, inst := range installments[r.ID] {
			settled := "Não"
			if inst.IsPaid {
				settled = "Sim"
			}
			paidAt := ""
			if inst.PaidAt != nil {
				paidAt = formatDate(*inst.PaidAt)
			}
			err := writeRow(f, installmentsSheet, rowNo, []interface{}{
				r.Number, inst.SequenceNo, formatOptionalDate(inst.DueDate),
				inst.Amount.InexactFloat64(), inst.PaidAmount.InexactFloat64(), settled, paidAt,
			})
			if err != nil {
				return err
			}
			rowNo++
		}
	}
	return styleSheet(f, installmentsSheet, len(installmentHeadings), headerStyle, moneyStyle, "D", "E")
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleSheet(f *excelize.File, sheet string, columns int, headerStyle, moneyStyle int, moneyFrom, moneyTo string) error {
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, moneyFrom+":"+moneyTo, moneyStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 14)
}

func exportErr(err error) error {
	return &models.PresentationError{Message: "could not build spreadsheet", Err: err}
}
