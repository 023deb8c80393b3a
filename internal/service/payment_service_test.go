package service

import (
	"testing"

	"clicker_backend/internal/domain"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    PaymentPayload
		wantErr bool
	}{
		{
			name: "task purchase",
			raw:  "task-42-premium_boost",
			want: PaymentPayload{Kind: "task", UserID: 42, ItemID: "premium_boost"},
		},
		{
			name: "star lootbox",
			raw:  "lootbox-7-star_box",
			want: PaymentPayload{Kind: "lootbox", UserID: 7, ItemID: "star_box"},
		},
		{
			name: "market purchase with numeric listing id",
			raw:  "market_purchase-15-301",
			want: PaymentPayload{Kind: "market_purchase", UserID: 15, ItemID: "301"},
		},
		{
			// only the first two separators are structural
			name: "item id containing dashes",
			raw:  "task-42-multi-part-item-id",
			want: PaymentPayload{Kind: "task", UserID: 42, ItemID: "multi-part-item-id"},
		},
		{name: "unknown kind", raw: "refund-42-x", wantErr: true},
		{name: "missing item", raw: "task-42", wantErr: true},
		{name: "empty item", raw: "task-42-", wantErr: true},
		{name: "non numeric user", raw: "task-abc-x", wantErr: true},
		{name: "zero user", raw: "task-0-x", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePayload(%q) = %+v, want error", tt.raw, got)
				}
				if !domain.IsValidation(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload(%q): %v", tt.raw, err)
			}
			if *got != tt.want {
				t.Fatalf("ParsePayload(%q) = %+v, want %+v", tt.raw, *got, tt.want)
			}
		})
	}
}
