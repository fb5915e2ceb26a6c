package usecase

import (
	"testing"
)

func TestMatches(t *testing.T) {
	testCases := []struct {
		name        string
		productName string
		query       string
		want        bool
	}{
		{
			name:        "all tokens present",
			productName: "Apple Watch SE (2nd Gen) GPS 40mm",
			query:       "apple watch",
			want:        true,
		},
		{
			name:        "case insensitive",
			productName: "GARMIN Forerunner 55",
			query:       "garmin forerunner",
			want:        true,
		},
		{
			name:        "one token missing",
			productName: "Garmin Forerunner 55",
			query:       "garmin fenix",
			want:        false,
		},
		{
			name:        "token as substring counts",
			productName: "Smartwatch Pro Max",
			query:       "watch",
			want:        true,
		},
		{
			name:        "empty query matches everything",
			productName: "Anything At All",
			query:       "",
			want:        true,
		},
		{
			name:        "whitespace only query matches everything",
			productName: "Anything At All",
			query:       "   ",
			want:        true,
		},
		{
			name:        "empty name fails non-empty query",
			productName: "",
			query:       "watch",
			want:        false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Matches(tc.productName, tc.query)
			if got != tc.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tc.productName, tc.query, got, tc.want)
			}
		})
	}
}
