package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

func TestShiftFilter(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	tests := []struct {
		name  string
		query models.ShiftQuery
		want  bson.D
	}{
		{name: "empty", query: models.ShiftQuery{}, want: bson.D{}},
		{
			name:  "operator and status",
			query: models.ShiftQuery{OperatorID: "op-1", Status: models.ShiftOpen},
			want: bson.D{
				{Key: "operator_id", Value: "op-1"},
				{Key: "status", Value: models.ShiftOpen},
			},
		},
		{
			name:  "range",
			query: models.ShiftQuery{From: &from, To: &to},
			want: bson.D{
				{Key: "opened_at", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shiftFilter(tt.query)
			gotRaw, err := bson.Marshal(got)
			if err != nil {
				t.Fatalf("marshal filter: %v", err)
			}
			wantRaw, err := bson.Marshal(tt.want)
			if err != nil {
				t.Fatalf("marshal expected: %v", err)
			}
			if string(gotRaw) != string(wantRaw) {
				t.Fatalf("filter mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShiftDocumentShape(t *testing.T) {
	closed := time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(models.Shift{
		ID:          "s-1",
		OperatorID:  "op-1",
		Status:      models.ShiftClosed,
		OpenedAt:    closed.Add(-8 * time.Hour),
		ClosedAt:    &closed,
		InitialCash: 500000,
		ClosingCash: models.MoneyPtr(645000),
	})
	if err != nil {
		t.Fatalf("marshal shift: %v", err)
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal shift: %v", err)
	}
	for _, key := range []string{"_id", "operator_id", "status", "opened_at", "closed_at", "initial_cash", "closing_cash"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected key %s in %v", key, doc)
		}
	}
	if doc["status"] != "closed" || doc["closing_cash"] != int64(645000) {
		t.Fatalf("unexpected document %v", doc)
	}
}
