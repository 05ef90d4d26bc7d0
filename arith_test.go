package basis

import (
	"errors"
	"testing"
)

func TestDiv(t *testing.T) {
	testCases := []struct {
		name string
		a, b string
		mode Rounding
		want string
	}{
		{"exact", "10", "4", HalfEven, "2.5"},
		{"third half even", "1", "3", HalfEven, "0.33333333333333333333"},
		{"two thirds half even", "2", "3", HalfEven, "0.66666666666666666667"},
		{"two thirds down", "2", "3", Down, "0.66666666666666666666"},
		{"third up", "1", "3", Up, "0.33333333333333333334"},
		{"negative down", "-2", "3", Down, "-0.66666666666666666666"},
		{"negative half up", "-2", "3", HalfUp, "-0.66666666666666666667"},
		{"tie to even zero", "1", "200000000000000000000", HalfEven, "0"},
		{"tie half up", "1", "200000000000000000000", HalfUp, "0.00000000000000000001"},
		{"tie to even two", "3", "200000000000000000000", HalfEven, "0.00000000000000000002"},
		{"negative tie to even", "-3", "200000000000000000000", HalfEven, "-0.00000000000000000002"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := div(MustMoney(tc.a).value, MustMoney(tc.b).value, tc.mode)
			if err != nil {
				t.Fatalf("div() error = %v", err)
			}
			if want := MustMoney(tc.want).value; !got.Equal(want) {
				t.Errorf("div(%s, %s, %v) = %s, want %s", tc.a, tc.b, tc.mode, got, want)
			}
		})
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := money("10").Div(Quantity{}, HalfEven); !errors.Is(err, ErrInvalidArithmetic) {
		t.Errorf("Money.Div(0) error = %v, want %v", err, ErrInvalidArithmetic)
	}
	if _, err := money("10").Ratio(Money{}, HalfEven); !errors.Is(err, ErrInvalidArithmetic) {
		t.Errorf("Money.Ratio(0) error = %v, want %v", err, ErrInvalidArithmetic)
	}
	if _, err := qty("10").Div(Quantity{}, Down); !errors.Is(err, ErrInvalidArithmetic) {
		t.Errorf("Quantity.Div(0) error = %v, want %v", err, ErrInvalidArithmetic)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, s := range []string{"", "abc", "1,5", "NaN"} {
		if _, err := ParseMoney(s); !errors.Is(err, ErrInvalidArithmetic) {
			t.Errorf("ParseMoney(%q) error = %v, want %v", s, err, ErrInvalidArithmetic)
		}
		if _, err := ParseQuantity(s); !errors.Is(err, ErrInvalidArithmetic) {
			t.Errorf("ParseQuantity(%q) error = %v, want %v", s, err, ErrInvalidArithmetic)
		}
	}
}

func TestExactArithmetic(t *testing.T) {
	// 0.1 + 0.2 is exactly 0.3, unlike binary floats.
	if got := money("0.1").Add(money("0.2")); !got.Equal(money("0.3")) {
		t.Errorf("0.1 + 0.2 = %s, want 0.3", got)
	}
	// 18 significant digits survive multiplication.
	got := money("123456789.123456789").Mul(qty("1"))
	if got.String() != "123456789.123456789" {
		t.Errorf("Mul() = %s, want 123456789.123456789", got)
	}
}

func TestRatioFormat(t *testing.T) {
	testCases := []struct {
		in      string
		percent string
		signed  string
	}{
		{"0.0532", "5.32%", "+5.32%"},
		{"-0.1", "-10.00%", "-10.00%"},
		{"0", "0.00%", "-"},
	}
	for _, tc := range testCases {
		r := MustRatio(tc.in)
		if got := r.Percent(); got != tc.percent {
			t.Errorf("Percent(%s) = %q, want %q", tc.in, got, tc.percent)
		}
		if got := r.SignedPercent(); got != tc.signed {
			t.Errorf("SignedPercent(%s) = %q, want %q", tc.in, got, tc.signed)
		}
	}
	if got := (Factor{Infinite: true}).String(); got != "inf" {
		t.Errorf("Factor.String() = %q, want inf", got)
	}
}
