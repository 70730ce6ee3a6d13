package domain

import "testing"

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"BUY", DirectionBuy, false},
		{"buy", DirectionBuy, false},
		{"Buy", DirectionBuy, false},
		{" sell ", DirectionSell, false},
		{"SELL", DirectionSell, false},
		{"", "", true},
		{"HOLD", "", true},
	}

	for _, tc := range cases {
		got, err := ParseDirection(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDirection(%q): got %s, want %s", tc.in, got, tc.want)
		}
	}
}
