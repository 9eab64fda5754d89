package render

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{999.9, "999.90"},
		{1000, "1,000.00"},
		{1234567.5, "1,234,567.50"},
		{-98765.432, "-98,765.43"},
	}
	for _, c := range cases {
		if got := formatMoney(c.in); got != c.want {
			t.Errorf("formatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount("USD", 1606); got != "USD 1,606.00" {
		t.Fatalf("got %q", got)
	}
	if got := formatAmount("", 1606); got != "1,606.00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := formatQuantity(200); got != "200" {
		t.Fatalf("got %q", got)
	}
	if got := formatQuantity(12.5); got != "12.50" {
		t.Fatalf("got %q", got)
	}
}
