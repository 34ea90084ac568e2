package models

import (
	"testing"
)

func TestNextConsignmentNumber(t *testing.T) {
	cases := []struct {
		last, want string
	}{
		{"", "C001"},
		{"C001", "C002"},
		{"C009", "C010"},
		{"C999", "C1000"},
		{"C1000", "C1001"},
		{"garbage", "C001"},
	}
	for _, tc := range cases {
		if got := NextConsignmentNumber(tc.last); got != tc.want {
			t.Fatalf("NextConsignmentNumber(%q) expected %s, got %s", tc.last, tc.want, got)
		}
	}
}

func TestConsignmentStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to ConsignmentStatus
		ok       bool
	}{
		{ConsignmentStatusOpen, ConsignmentStatusClosed, true},
		{ConsignmentStatusOpen, ConsignmentStatusCancelled, true},
		{ConsignmentStatusClosed, ConsignmentStatusOpen, true},
		{ConsignmentStatusClosed, ConsignmentStatusCancelled, true},
		{ConsignmentStatusCancelled, ConsignmentStatusOpen, false},
		{ConsignmentStatusCancelled, ConsignmentStatusClosed, false},
		{ConsignmentStatusOpen, ConsignmentStatusOpen, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestUpdateConsignmentHeader_Validate(t *testing.T) {
	archived := &ConsignmentNote{Status: ConsignmentStatusClosed, IsArchived: true}
	input := UpdateConsignmentHeader{Status: ConsignmentStatusOpen}
	if err := input.Validate(archived); !IsValidationError(err) {
		t.Fatalf("expected archived status change to fail, got %v", err)
	}

	keep := UpdateConsignmentHeader{Notes: "x"}
	if err := keep.Validate(archived); err != nil {
		t.Fatalf("expected notes-only update on archived note to pass, got %v", err)
	}
	if keep.Status != ConsignmentStatusClosed {
		t.Fatalf("expected status defaulted to current, got %s", keep.Status)
	}

	cancelled := &ConsignmentNote{Status: ConsignmentStatusCancelled}
	reopen := UpdateConsignmentHeader{Status: ConsignmentStatusOpen}
	if err := reopen.Validate(cancelled); !IsValidationError(err) {
		t.Fatalf("expected cancelled to be terminal, got %v", err)
	}
}

func TestNewConsignmentNote_Validate(t *testing.T) {
	valid := func() NewConsignmentNote {
		return NewConsignmentNote{
			SellerId: 1,
			Items: []NewConsignmentItem{
				{Reference: "R1", Size: "M", Color: "Azul", Quantity: 2, UnitPrice: dec("10")},
			},
		}
	}

	ok := valid()
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if ok.Origin != StockOriginStore {
		t.Fatalf("expected origin default store, got %s", ok.Origin)
	}

	cases := map[string]func(*NewConsignmentNote){
		"no seller":      func(n *NewConsignmentNote) { n.SellerId = 0 },
		"no reference":   func(n *NewConsignmentNote) { n.Items[0].Reference = " " },
		"no size":        func(n *NewConsignmentNote) { n.Items[0].Size = "" },
		"no color":       func(n *NewConsignmentNote) { n.Items[0].Color = "" },
		"zero quantity":  func(n *NewConsignmentNote) { n.Items[0].Quantity = 0 },
		"negative price": func(n *NewConsignmentNote) { n.Items[0].UnitPrice = dec("-1") },
		"bad origin":     func(n *NewConsignmentNote) { n.Origin = "warehouse" },
	}
	for name, mutate := range cases {
		input := valid()
		mutate(&input)
		if err := input.Validate(); !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
