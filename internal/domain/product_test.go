package domain

import (
	"encoding/json"
	"testing"
)

func TestProductRecordJSON(t *testing.T) {
	t.Run("empty fields serialize as empty strings", func(t *testing.T) {
		data, err := json.Marshal(ProductRecord{ProductName: "Widget"})
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}

		for _, key := range []string{"link", "price", "currency", "source", "imageUrl"} {
			v, present := m[key]
			if !present {
				t.Errorf("key %q missing from output", key)
				continue
			}
			if v != "" {
				t.Errorf("%s = %v, want empty string", key, v)
			}
		}
		if _, present := m["additionalInfo"]; present {
			t.Error("additionalInfo should be omitted when nil")
		}
	})

	t.Run("additional info flattens to one object", func(t *testing.T) {
		rec := ProductRecord{ProductName: "Widget"}
		info := rec.EnsureInfo()
		info.Rating = "4.5"
		info.PriceEstimated = true
		info.Extra = map[string]string{"color": "black"}

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}

		infoMap, ok := m["additionalInfo"].(map[string]any)
		if !ok {
			t.Fatalf("additionalInfo = %T, want object", m["additionalInfo"])
		}
		if infoMap["rating"] != "4.5" {
			t.Errorf("rating = %v, want 4.5", infoMap["rating"])
		}
		if infoMap["priceEstimated"] != true {
			t.Errorf("priceEstimated = %v, want true", infoMap["priceEstimated"])
		}
		if infoMap["color"] != "black" {
			t.Errorf("color = %v, want black", infoMap["color"])
		}
		if _, present := infoMap["reviews"]; present {
			t.Error("empty known fields should be omitted")
		}
	})

	t.Run("known keys never lose to overflow duplicates", func(t *testing.T) {
		info := AdditionalInfo{
			Rating: "4.5",
			Extra:  map[string]string{"rating": "overridden"},
		}

		data, err := json.Marshal(info)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if m["rating"] != "4.5" {
			t.Errorf("rating = %v, want the field value 4.5", m["rating"])
		}
	})

	t.Run("unmarshal splits known fields from overflow", func(t *testing.T) {
		var info AdditionalInfo
		payload := `{"rating":"4.2","priceEstimated":true,"seller":"ACME","stock":7}`

		if err := json.Unmarshal([]byte(payload), &info); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}

		if info.Rating != "4.2" {
			t.Errorf("Rating = %q, want 4.2", info.Rating)
		}
		if !info.PriceEstimated {
			t.Error("PriceEstimated = false, want true")
		}
		if info.Extra["seller"] != "ACME" {
			t.Errorf("Extra[seller] = %q, want ACME", info.Extra["seller"])
		}
		if info.Extra["stock"] != "7" {
			t.Errorf("Extra[stock] = %q, want raw 7", info.Extra["stock"])
		}
	})
}

func TestEnsureInfo(t *testing.T) {
	var rec ProductRecord

	first := rec.EnsureInfo()
	if first == nil {
		t.Fatal("EnsureInfo returned nil")
	}
	second := rec.EnsureInfo()
	if first != second {
		t.Error("EnsureInfo should return the same instance")
	}
}
