package comparison

import "testing"

type intVal int

func (v intVal) Compare(other intVal) int {
	return int(v) - int(other)
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		cmp  Comparison
		a, b intVal
		want bool
	}{
		{Equal, 5, 5, true},
		{Equal, 5, 6, false},
		{NotEqual, 5, 6, true},
		{NotEqual, 5, 5, false},
		{LessThan, 4, 5, true},
		{LessThan, 5, 5, false},
		{LessOrEqual, 5, 5, true},
		{LessOrEqual, 6, 5, false},
		{GreaterThan, 6, 5, true},
		{GreaterThan, 5, 5, false},
		{GreaterOrEqual, 5, 5, true},
		{GreaterOrEqual, 4, 5, false},
	}
	for _, c := range cases {
		if got := Evaluate(c.cmp, c.a, c.b); got != c.want {
			t.Errorf("Evaluate(%v, %d, %d) = %v, want %v", c.cmp, c.a, c.b, got, c.want)
		}
	}
}

func TestFlipOperandsIsInvolutionOfEvaluate(t *testing.T) {
	all := []Comparison{Equal, NotEqual, LessThan, LessOrEqual, GreaterThan, GreaterOrEqual}
	pairs := [][2]intVal{{3, 7}, {7, 3}, {4, 4}}
	for _, c := range all {
		for _, p := range pairs {
			a, b := p[0], p[1]
			if Evaluate(c, a, b) != Evaluate(c.FlipOperands(), b, a) {
				t.Errorf("%v.FlipOperands().evaluate(%d,%d) != %v.evaluate(%d,%d)", c, b, a, c, a, b)
			}
		}
	}
}

func TestFilterList(t *testing.T) {
	xs := []intVal{1, 2, 3, 4, 5}
	got := FilterList(xs, LessThan, intVal(3))
	want := []intVal{1, 2}
	if len(got) != len(want) {
		t.Fatalf("FilterList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FilterList = %v, want %v", got, want)
		}
	}
}

func TestString(t *testing.T) {
	cases := map[Comparison]string{
		Equal: "==", NotEqual: "!=", LessThan: "<",
		LessOrEqual: "<=", GreaterThan: ">", GreaterOrEqual: ">=",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", c, got, want)
		}
	}
}
