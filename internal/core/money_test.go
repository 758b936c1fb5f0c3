package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"500.00", "500.00", true},
		{"1,23", "1.23", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.5 ", "2.50", true},
		{"-3.10", "-3.10", true},
		{"9999999999999999.99", "9999999999999999.99", true},
		{"10000000000000000", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Limit Money `json:"limit"`
	}{MustParseMoney("600")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"limit":600.00}` {
		t.Fatalf("unexpected json %s", b)
	}

	for _, in := range []string{`12.345`, `"12.345"`, `12.35`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if m.String() != "12.35" {
			t.Fatalf("unmarshal %s: got %s", in, m)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"twelve"`), &m); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoneyScanValue(t *testing.T) {
	v, err := MustParseMoney("42.1").Value()
	if err != nil || v != "42.10" {
		t.Fatalf("value=%v err=%v", v, err)
	}

	for _, src := range []any{"42.10", []byte("42.1"), int64(42), 42.1} {
		var m Money
		if err := m.Scan(src); err != nil {
			t.Fatalf("scan %T: %v", src, err)
		}
		if m.IntPart() != 42 {
			t.Fatalf("scan %T: got %s", src, m)
		}
	}
}

func TestMoneyDecimalCommaMatchesParse(t *testing.T) {
	for _, in := range []string{"2,50", " 12,345 ", "1.005", "abc,d"} {
		parsed, parseErr := ParseMoney(in)

		var decoded Money
		data, _ := json.Marshal(in)
		decodeErr := json.Unmarshal(data, &decoded)

		if (parseErr == nil) != (decodeErr == nil) {
			t.Fatalf("%q: ParseMoney err=%v, UnmarshalJSON err=%v", in, parseErr, decodeErr)
		}
		if parseErr == nil && parsed.String() != decoded.String() {
			t.Fatalf("%q: ParseMoney = %s, UnmarshalJSON = %s", in, parsed, decoded)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"2,50"`), &m); err != nil || m.String() != "2.50" {
		t.Fatalf(`unmarshal "2,50" = %s, %v`, m, err)
	}
}
