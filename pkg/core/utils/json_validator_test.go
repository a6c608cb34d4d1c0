package utils

import "testing"

type target struct {
	Strategy string `json:"strategy"`
	Amount   string `json:"amount_col"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"clean json", `{"strategy":"type_col","amount_col":"Amount"}`, false},
		{"fenced json", "```json\n{\"strategy\":\"type_col\",\"amount_col\":\"Amount\"}\n```", false},
		{"single quotes", `{'strategy': 'type_col', 'amount_col': 'Amount'}`, false},
		{"trailing comma", `{"strategy":"type_col","amount_col":"Amount",}`, false},
		{"hjson style", "{\n  strategy: type_col\n  amount_col: Amount\n}", false},
		{"prose", "The sheet appears to use a single amount column.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out target
			err := SmartParse(tt.in, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SmartParse error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (out.Strategy != "type_col" || out.Amount != "Amount") {
				t.Errorf("decoded = %+v", out)
			}
		})
	}
}

func TestMustRepairJSON(t *testing.T) {
	if got := MustRepairJSON("not json at all \x00"); got == "" {
		t.Error("MustRepairJSON must always return something")
	}
}
