package reports

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
)

//go:embed templates/consignmentNote.html
var consignmentNoteTemplate string

var noteTemplate = template.Must(template.New("consignmentNote").Parse(consignmentNoteTemplate))

type printLine struct {
	Index       int
	Reference   string
	ProductName string
	Color       string
	Size        string
	Quantity    int
	Returned    int
	Remaining   int
	UnitPrice   string
	Subtotal    string
}

type printView struct {
	Store              config.StoreInfo
	Number             string
	Status             string
	IssueDate          string
	DueDate            string
	Origin             string
	SellerName         string
	Notes              string
	Lines              []printLine
	OriginalTotal      string
	ReturnedValue      string
	SoldValue          string
	OutstandingBalance string
}

// PrintableNote is everything the printed note shows. ProductNames maps a line reference to its catalog name.
type PrintableNote struct {
	Store        config.StoreInfo
	Note         *models.ConsignmentNoteDetail
	SellerName   string
	ProductNames map[string]string
}

func newPrintView(data PrintableNote) printView {
	note := data.Note
	balance := note.Balance
	view := printView{
		Store:              data.Store,
		Number:             note.Number,
		Status:             statusLabel(note.Status),
		IssueDate:          formatDate(note.IssueDate),
		DueDate:            formatOptionalDate(note.DueDate),
		Origin:             originLabel(note.Origin),
		SellerName:         data.SellerName,
		Notes:              note.Notes,
		OriginalTotal:      FormatMoney(balance.OriginalTotal),
		ReturnedValue:      FormatMoney(balance.ReturnedValue),
		SoldValue:          FormatMoney(balance.SoldValue()),
		OutstandingBalance: FormatMoney(balance.OutstandingBalance),
	}
	if view.SellerName == "" && note.Seller != nil {
		view.SellerName = note.Seller.Name
	}
	for i, item := range note.Items {
		view.Lines = append(view.Lines, printLine{
			Index:       i + 1,
			Reference:   item.Reference,
			ProductName: data.ProductNames[item.Reference],
			Color:       item.Color,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Returned:    item.ReturnedQuantity,
			Remaining:   item.RemainingQuantity(),
			UnitPrice:   FormatMoney(item.UnitPrice),
			Subtotal:    FormatMoney(item.PayableValue()),
		})
	}
	return view
}

// RenderConsignmentNote writes the print-ready HTML of a note. The page opens the print dialog on load.
// Nothing is written to w when rendering fails.
func RenderConsignmentNote(w io.Writer, data PrintableNote) error {
	if data.Note == nil || data.Note.ConsignmentNote == nil {
		return &models.PresentationError{Message: "nothing to print"}
	}
	if data.Store.Name == "" {
		data.Store = config.GetStoreInfo()
	}

	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, newPrintView(data)); err != nil {
		return &models.PresentationError{Message: "could not render note " + data.Note.Number, Err: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &models.PresentationError{Message: "could not write note " + data.Note.Number, Err: err}
	}
	return nil
}
