package textutil

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

func TestStripMarkup(t *testing.T) {
	cases := map[string]string{
		"  Jane   Doe ":                    "Jane Doe",
		"<b>Jane</b> Doe":                  "Jane Doe",
		"<script>alert(1)</script>Main St": "Main St",
		"Smith & Sons":                     "Smith & Sons",
		"":                                 "",
	}
	for input, expected := range cases {
		if got := StripMarkup(input); got != expected {
			t.Fatalf("StripMarkup(%q): expected %q got %q", input, expected, got)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	out := FormatMoney(language.English, "usd", decimal.RequireFromString("1234.505"))
	if !strings.Contains(out, "1,234.51") {
		t.Fatalf("expected grouped amount, got %q", out)
	}

	fallback := FormatMoney(language.English, "zzz1", decimal.RequireFromString("3.6"))
	if fallback != "ZZZ1 3.60" {
		t.Fatalf("unexpected fallback %q", fallback)
	}
}
