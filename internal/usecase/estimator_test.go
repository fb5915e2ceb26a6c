package usecase

import (
	"testing"

	"github.com/pricescout/backend/internal/domain"
)

func TestEstimatePrice(t *testing.T) {
	t.Run("fills apple watch estimate and marks it", func(t *testing.T) {
		record := domain.ProductRecord{
			ProductName: "Apple Watch SE (2nd Gen)",
			Source:      "Google Search",
		}

		got := EstimatePrice(record, "apple watch")

		if got.Price != "399" {
			t.Errorf("Price = %q, want 399", got.Price)
		}
		if got.Info == nil || !got.Info.PriceEstimated {
			t.Error("expected PriceEstimated to be set")
		}
	})

	t.Run("matches apple by source without apple watch in name", func(t *testing.T) {
		record := domain.ProductRecord{
			ProductName: "Series 9 GPS 45mm Midnight",
			Source:      "apple.com",
		}

		got := EstimatePrice(record, "watch")

		if got.Price != "399" {
			t.Errorf("Price = %q, want 399", got.Price)
		}
	})

	t.Run("does not match apple in product name alone", func(t *testing.T) {
		record := domain.ProductRecord{
			ProductName: "Pineapple Slicer Deluxe",
			Source:      "store.example.com",
		}

		got := EstimatePrice(record, "slicer")

		if got.Price != "" {
			t.Errorf("Price = %q, want empty", got.Price)
		}
		if got.Info != nil && got.Info.PriceEstimated {
			t.Error("PriceEstimated should not be set")
		}
	})

	t.Run("keeps existing price untouched", func(t *testing.T) {
		record := domain.ProductRecord{
			ProductName: "Apple Watch SE",
			Price:       "249.99",
			Source:      "Amazon US",
		}

		got := EstimatePrice(record, "apple watch")

		if got.Price != "249.99" {
			t.Errorf("Price = %q, want 249.99", got.Price)
		}
		if got.Info != nil && got.Info.PriceEstimated {
			t.Error("PriceEstimated should not be set for a real price")
		}
	})

	t.Run("garmin estimate", func(t *testing.T) {
		record := domain.ProductRecord{ProductName: "Garmin Instinct 2"}

		got := EstimatePrice(record, "garmin instinct")

		if got.Price != "299" {
			t.Errorf("Price = %q, want 299", got.Price)
		}
	})

	t.Run("luxury brand estimate", func(t *testing.T) {
		record := domain.ProductRecord{ProductName: "Tudor Black Bay 58"}

		got := EstimatePrice(record, "tudor")

		if got.Price != "2999" {
			t.Errorf("Price = %q, want 2999", got.Price)
		}
	})

	t.Run("generic smartwatch fallback from name", func(t *testing.T) {
		record := domain.ProductRecord{ProductName: "NoName Smartwatch X1"}

		got := EstimatePrice(record, "x1")

		if got.Price != "149" {
			t.Errorf("Price = %q, want 149", got.Price)
		}
	})

	t.Run("generic smartwatch fallback from query", func(t *testing.T) {
		record := domain.ProductRecord{ProductName: "X1 Fitness Band"}

		got := EstimatePrice(record, "cheap smartwatch")

		if got.Price != "149" {
			t.Errorf("Price = %q, want 149", got.Price)
		}
	})

	t.Run("leaves currency alone", func(t *testing.T) {
		record := domain.ProductRecord{
			ProductName: "Garmin Venu 3",
			Currency:    "EUR",
		}

		got := EstimatePrice(record, "garmin")

		if got.Currency != "EUR" {
			t.Errorf("Currency = %q, want EUR", got.Currency)
		}
	})

	t.Run("no rule and no fallback leaves record unchanged", func(t *testing.T) {
		record := domain.ProductRecord{ProductName: "Desk Lamp"}

		got := EstimatePrice(record, "lamp")

		if got.Price != "" {
			t.Errorf("Price = %q, want empty", got.Price)
		}
	})
}
