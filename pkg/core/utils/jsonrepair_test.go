package utils

import "testing"

type opinionPayload struct {
	ColumnMap  map[string]int `json:"column_map"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompleteTruncated(t *testing.T) {
	t.Run("intact payload untouched", func(t *testing.T) {
		in := `{"confidence": 0.9}`
		if got := CompleteTruncated(in); got != in {
			t.Errorf("CompleteTruncated() = %q, want unchanged", got)
		}
	})

	t.Run("truncated reasoning string closed", func(t *testing.T) {
		in := `{"column_map": {"item_name": 0}, "confidence": 0.9, "reasoning": "the first col`
		var p opinionPayload
		if err := SmartParse(CompleteTruncated(in), &p); err != nil {
			t.Fatalf("salvaged payload still unparseable: %v", err)
		}
		if p.ColumnMap["item_name"] != 0 || p.Confidence != 0.9 {
			t.Errorf("salvage dropped fields: %+v", p)
		}
	})

	t.Run("trailing comma trimmed", func(t *testing.T) {
		in := `{"confidence": 0.8,`
		var p opinionPayload
		if err := SmartParse(CompleteTruncated(in), &p); err != nil {
			t.Fatalf("salvaged payload still unparseable: %v", err)
		}
		if p.Confidence != 0.8 {
			t.Errorf("Confidence = %v, want 0.8", p.Confidence)
		}
	})
}

func TestSmartParse(t *testing.T) {
	t.Run("strict json", func(t *testing.T) {
		var p opinionPayload
		if err := SmartParse(`{"column_map":{"note":1},"confidence":1,"reasoning":"r"}`, &p); err != nil {
			t.Fatal(err)
		}
		if p.ColumnMap["note"] != 1 {
			t.Errorf("ColumnMap = %v", p.ColumnMap)
		}
	})

	t.Run("single quoted keys repaired", func(t *testing.T) {
		var p opinionPayload
		if err := SmartParse(`{'column_map': {'item_name': 0}, 'confidence': 0.7}`, &p); err != nil {
			t.Fatalf("SmartParse failed on repairable input: %v", err)
		}
		if p.Confidence != 0.7 {
			t.Errorf("Confidence = %v, want 0.7", p.Confidence)
		}
	})

	t.Run("hopeless input fails", func(t *testing.T) {
		var p opinionPayload
		if err := SmartParse("no structure here at all", &p); err == nil {
			t.Error("SmartParse accepted garbage")
		}
	})
}
