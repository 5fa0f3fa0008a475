package geometry

import "testing"

func TestParseMargin(t *testing.T) {
	tests := []struct {
		input string
		want  Margin
	}{
		{"", Margin{}},
		{"0", Margin{}},
		{"-50px", Margin{
			Top: Length{Value: -50}, Right: Length{Value: -50},
			Bottom: Length{Value: -50}, Left: Length{Value: -50},
		}},
		{"10px 20%", Margin{
			Top: Length{Value: 10}, Right: Length{Value: 20, Percent: true},
			Bottom: Length{Value: 10}, Left: Length{Value: 20, Percent: true},
		}},
		{"1px 2px 3px", Margin{
			Top: Length{Value: 1}, Right: Length{Value: 2},
			Bottom: Length{Value: 3}, Left: Length{Value: 2},
		}},
		{"0px 0px -10% 0px", Margin{
			Bottom: Length{Value: -10, Percent: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMargin(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseMargin_Invalid(t *testing.T) {
	for _, input := range []string{"50", "10em", "px", "1px 2px 3px 4px 5px", "abc%", "NaNpx", "Infpx", "-Inf%", "0px NaN%"} {
		if _, err := ParseMargin(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestMargin_Apply(t *testing.T) {
	root := RectFromLTWH(0, 100, 800, 600)

	m, err := ParseMargin("-50px")
	if err != nil {
		t.Fatal(err)
	}
	got := m.Apply(root)
	want := Rect{Left: 50, Top: 150, Right: 750, Bottom: 650}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	m, err = ParseMargin("10% 0px")
	if err != nil {
		t.Fatal(err)
	}
	got = m.Apply(root)
	want = Rect{Left: 0, Top: 40, Right: 800, Bottom: 760}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMargin_String(t *testing.T) {
	m, err := ParseMargin("-50px 10%")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.String(); got != "-50px 10% -50px 10%" {
		t.Errorf("unexpected string %q", got)
	}
}
