package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoneyString(t *testing.T) {
	tests := map[Money]string{
		0:        "0",
		500:      "500",
		1000:     "1,000",
		1250000:  "1,250,000",
		-5000:    "-5,000",
		-100000:  "-100,000",
		12345678: "12,345,678",
	}
	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(in), got, want)
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{in: "125000", want: 125000},
		{in: "125000.00", want: 125000},
		{in: "99.5", want: 100},
		{in: "-0.4", want: 0},
	}
	for _, tt := range tests {
		if got := MoneyFromDecimal(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("MoneyFromDecimal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseTender(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		validate func(t *testing.T, tender Tender)
	}{
		{
			name: "sorted descending",
			raw:  "1000, 500000,20000",
			validate: func(t *testing.T, tender Tender) {
				if len(tender) != 3 || tender[0] != 500000 || tender[2] != 1000 {
					t.Fatalf("unexpected tender %v", tender)
				}
				if !tender.Contains(20000) || tender.Contains(300) {
					t.Fatalf("Contains misbehaves on %v", tender)
				}
			},
		},
		{name: "empty", raw: " ", wantErr: true},
		{name: "duplicate", raw: "500,500", wantErr: true},
		{name: "negative", raw: "500,-1", wantErr: true},
		{name: "not a number", raw: "500,abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tender, err := ParseTender(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", tender)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTender returned error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, tender)
			}
		})
	}
}

func TestShiftQueryMatches(t *testing.T) {
	opened := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	shift := Shift{OperatorID: "op-1", Status: ShiftClosed, OpenedAt: opened}
	before := opened.Add(-time.Hour)
	after := opened.Add(time.Hour)

	tests := []struct {
		name  string
		query ShiftQuery
		want  bool
	}{
		{name: "empty query", query: ShiftQuery{}, want: true},
		{name: "operator match", query: ShiftQuery{OperatorID: "op-1"}, want: true},
		{name: "operator mismatch", query: ShiftQuery{OperatorID: "op-2"}, want: false},
		{name: "status mismatch", query: ShiftQuery{Status: ShiftOpen}, want: false},
		{name: "inside range", query: ShiftQuery{From: &before, To: &after}, want: true},
		{name: "bounds are inclusive", query: ShiftQuery{From: &opened, To: &opened}, want: true},
		{name: "after range", query: ShiftQuery{To: &before}, want: false},
		{name: "before range", query: ShiftQuery{From: &after}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(shift); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShiftWindowEnd(t *testing.T) {
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	closedAt := now.Add(-time.Hour)

	open := Shift{Status: ShiftOpen}
	if !open.IsOpen() || !open.WindowEnd(now).Equal(now) {
		t.Fatalf("open shift window should end now")
	}
	closed := Shift{Status: ShiftClosed, ClosedAt: &closedAt}
	if closed.IsOpen() || !closed.WindowEnd(now).Equal(closedAt) {
		t.Fatalf("closed shift window should end at close time")
	}
	var missing *Shift
	if missing.IsOpen() {
		t.Fatalf("nil shift is never open")
	}
}
