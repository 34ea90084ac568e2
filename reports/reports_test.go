package reports

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleNote() *models.ConsignmentNoteDetail {
	due := time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
	note := &models.ConsignmentNote{
		ID:        7,
		Number:    "C007",
		IssueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
		Origin:    models.StockOriginFactory,
		Status:    models.ConsignmentStatusOpen,
		Notes:     "<b>frágil</b>",
		Seller:    &models.Seller{ID: 1, Name: "Ana"},
		Items: []models.ConsignmentItem{
			{ID: 1, NoteId: 7, Reference: "R1", Size: "M", Color: "Azul", Quantity: 10, ReturnedQuantity: 4, UnitPrice: dec("20")},
		},
		Installments: []models.ConsignmentInstallment{
			{ID: 1, NoteId: 7, SequenceNo: 1, DueDate: &due, Amount: dec("60"), PaidAmount: dec("60"), IsPaid: true},
			{ID: 2, NoteId: 7, SequenceNo: 2, DueDate: &due, Amount: dec("60")},
		},
	}
	return &models.ConsignmentNoteDetail{ConsignmentNote: note, Balance: note.Balance()}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"120", "R$ 120,00"},
		{"0", "R$ 0,00"},
		{"33.335", "R$ 33,34"},
		{"0.005", "R$ 0,01"},
		{"1234.5", "R$ 1.234,50"},
		{"999999.999", "R$ 1.000.000,00"},
		{"12345678901234.56", "R$ 12.345.678.901.234,56"},
		{"-1500.2", "R$ -1.500,20"},
	}
	for _, tt := range tests {
		if got := FormatMoney(dec(tt.in)); got != tt.want {
			t.Fatalf("FormatMoney(%s): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRenderConsignmentNote(t *testing.T) {
	var buf bytes.Buffer
	err := RenderConsignmentNote(&buf, PrintableNote{
		Store:        config.StoreInfo{Name: "Loja Teste"},
		Note:         sampleNote(),
		ProductNames: map[string]string{"R1": "Vestido"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"Loja Teste", "C007", "Fábrica", "Ana", "Vestido", "10/08/2024", "R$ 120,00", "R$ 80,00", "window.print()"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in rendered note", want)
		}
	}
	if strings.Contains(html, "<b>frágil</b>") {
		t.Fatalf("notes must be escaped")
	}
}

func TestRenderConsignmentNote_NothingToPrint(t *testing.T) {
	var buf bytes.Buffer
	err := RenderConsignmentNote(&buf, PrintableNote{})
	if !models.IsPresentationError(err) {
		t.Fatalf("expected presentation error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestRenderConsignmentNote_WriteFailure(t *testing.T) {
	err := RenderConsignmentNote(failingWriter{}, PrintableNote{Store: config.StoreInfo{Name: "x"}, Note: sampleNote()})
	if !models.IsPresentationError(err) {
		t.Fatalf("expected presentation error, got %v", err)
	}
}

func TestBuildChatLink(t *testing.T) {
	t.Setenv("CHAT_DEFAULT_REGION", "BR")

	link, err := BuildChatLink("(11) 98765-4321", "Olá Ana & cia")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	want := "https://wa.me/5511987654321?text=Ol%C3%A1%20Ana%20%26%20cia"
	if link != want {
		t.Fatalf("expected %s, got %s", want, link)
	}

	link, err = BuildChatLink("+55 21 99876-5432", "")
	if err != nil || link != "https://wa.me/5521998765432" {
		t.Fatalf("unexpected link %s / %v", link, err)
	}

	for _, phone := range []string{"", "123"} {
		if _, err := BuildChatLink(phone, "oi"); !models.IsValidationError(err) {
			t.Fatalf("%q: expected validation error, got %v", phone, err)
		}
	}
}

func TestNoteChatSummary(t *testing.T) {
	text := NoteChatSummary("Ana", sampleNote())

	for _, want := range []string{"Olá, Ana!", "C007", "Vendido: R$ 120,00", "Pago: R$ 60,00", "Saldo: R$ 60,00", "Parcela 2 - venc. 10/08/2024 - R$ 60,00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
	if strings.Contains(text, "Parcela 1") {
		t.Fatalf("paid installments must be left out: %q", text)
	}
}

func TestExportNoteSummaries(t *testing.T) {
	note := sampleNote()
	rows := []models.ConsignmentNoteSummary{{
		ID:                 note.ID,
		Number:             note.Number,
		SellerName:         "Ana",
		IssueDate:          note.IssueDate,
		Origin:             note.Origin,
		Status:             note.Status,
		ItemsTotal:         10,
		ItemsReturned:      4,
		ItemsSold:          6,
		OriginalTotal:      dec("200"),
		ReturnedValue:      dec("80"),
		SoldValue:          dec("120"),
		TotalPaid:          dec("60"),
		OutstandingBalance: dec("60"),
	}}
	items := map[int][]*models.ConsignmentItem{note.ID: {&note.Items[0]}}
	installments := map[int][]*models.ConsignmentInstallment{note.ID: {&note.Installments[0], &note.Installments[1]}}

	f, err := ExportNoteSummaries(rows, items, installments)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	notes, err := f.GetRows(notesSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(notes) != 2 || notes[0][0] != "Número" || notes[1][0] != "C007" || notes[1][1] != "Ana" || notes[1][4] != "Fábrica" {
		t.Fatalf("unexpected notes sheet %v", notes)
	}

	lines, err := f.GetRows(itemsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(lines) != 2 || lines[1][0] != "C007" || lines[1][1] != "R1" || lines[1][6] != "6" {
		t.Fatalf("unexpected items sheet %v", lines)
	}

	schedule, err := f.GetRows(installmentsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(schedule) != 3 || schedule[1][1] != "1" || schedule[1][5] != "Sim" || schedule[2][2] != "10/08/2024" || schedule[2][5] != "Não" {
		t.Fatalf("unexpected installments sheet %v", schedule)
	}
}

func TestExportNoteSummaries_WithoutItems(t *testing.T) {
	f, err := ExportNoteSummaries(nil, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()
	for _, sheet := range []string{itemsSheet, installmentsSheet} {
		if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
			t.Fatalf("expected no %s sheet", sheet)
		}
	}
}
