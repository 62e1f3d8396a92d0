package interest

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize_LowercasesTrimsAndDedupes(t *testing.T) {
	got := Normalize([]string{" Gaming ", "music", "GAMING", "", "  ", "Music"})

	want := []string{"gaming", "music"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestNormalize_OrderIndependent(t *testing.T) {
	a := Normalize([]string{"zumba", "anime", "gaming"})
	b := Normalize([]string{"gaming", "zumba", "anime"})

	if len(a) != len(b) {
		t.Fatalf("normalized lengths differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("normalized sets differ: %v vs %v", a, b)
			break
		}
	}
}

func TestScore_SharedGround(t *testing.T) {
	// gaming is shared; union is {gaming, music, movies}.
	a := Normalize([]string{"gaming", "music"})
	b := Normalize([]string{"gaming", "movies"})

	got := Score(a, b)
	if !almostEqual(got, 1.0/3.0) {
		t.Errorf("expected 1/3, got %f", got)
	}
}

func TestScore_Identical(t *testing.T) {
	a := Normalize([]string{"gaming", "music"})

	if got := Score(a, a); !almostEqual(got, 1) {
		t.Errorf("identical sets should score 1, got %f", got)
	}
}

func TestScore_Disjoint(t *testing.T) {
	a := Normalize([]string{"gaming", "music"})
	b := Normalize([]string{"sports", "cooking"})

	if got := Score(a, b); got != 0 {
		t.Errorf("disjoint sets should score 0, got %f", got)
	}
}

func TestScore_EmptySets(t *testing.T) {
	nonEmpty := Normalize([]string{"gaming"})

	if got := Score(nil, nonEmpty); got != 0 {
		t.Errorf("empty left set should score 0, got %f", got)
	}
	if got := Score(nonEmpty, nil); got != 0 {
		t.Errorf("empty right set should score 0, got %f", got)
	}
	if got := Score(nil, nil); got != 0 {
		t.Errorf("two empty sets should score 0, got %f", got)
	}
}

func TestScore_Symmetric(t *testing.T) {
	cases := [][2][]string{
		{{"gaming", "music"}, {"gaming", "movies"}},
		{{"a", "b", "c"}, {"c", "d"}},
		{{"x"}, {"x"}},
		{{"x"}, {"y"}},
		{{"cooking", "travel", "music"}, {"music"}},
	}
	for _, c := range cases {
		a, b := Normalize(c[0]), Normalize(c[1])
		if s1, s2 := Score(a, b), Score(b, a); !almostEqual(s1, s2) {
			t.Errorf("Score(%v, %v)=%f but Score(%v, %v)=%f", a, b, s1, b, a, s2)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	a := Normalize([]string{"gaming", "music", "anime"})
	b := Normalize([]string{"anime", "cooking"})

	first := Score(a, b)
	for i := 0; i < 100; i++ {
		if got := Score(a, b); got != first {
			t.Fatalf("score changed between calls: %f vs %f", first, got)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	a := Normalize([]string{"a", "b", "c", "d"})
	b := Normalize([]string{"c", "d", "e"})

	got := Score(a, b)
	if got < 0 || got > 1 {
		t.Errorf("score out of [0,1]: %f", got)
	}
}

func TestShared_Intersection(t *testing.T) {
	a := Normalize([]string{"gaming", "music", "anime"})
	b := Normalize([]string{"anime", "gaming", "cooking"})

	got := Shared(a, b)
	want := []string{"anime", "gaming"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestShared_NothingInCommon(t *testing.T) {
	a := Normalize([]string{"gaming"})
	b := Normalize([]string{"cooking"})

	if got := Shared(a, b); got != nil {
		t.Errorf("expected nil for disjoint sets, got %v", got)
	}
}
