package domain

import "testing"

func TestCardLastFour(t *testing.T) {
	tests := map[string]string{
		"4111111111111111":    "1111",
		"5500005555555559":    "5559",
		"4242424242424242424": "2424",
		"1234":                "1234",
		"42":                  "42",
		"":                    "",
	}
	for card, want := range tests {
		if got := CardLastFour(card); got != want {
			t.Errorf("CardLastFour(%q) = %q, want %q", card, got, want)
		}
	}
}
