package cmp_test

import (
	"strconv"
	"testing"

	"github.com/servefab/servefab/pkg/utils/cmp"
)

func TestSliceEq(t *testing.T) {
	theory := func(a, b []int, then bool) func(*testing.T) {
		return func(t *testing.T) {
			if actual := cmp.SliceEq(a, b); actual != then {
				t.Errorf("SliceEq(%v, %v): actual=%v, expect=%v", a, b, actual, then)
			}
		}
	}

	t.Run("equal slices", theory([]int{1, 2, 3}, []int{1, 2, 3}, true))
	t.Run("empty slices", theory([]int{}, []int{}, true))
	t.Run("different lengths", theory([]int{1, 2}, []int{1, 2, 3}, false))
	t.Run("different order", theory([]int{1, 2, 3}, []int{3, 2, 1}, false))
}

func TestSliceEqWith(t *testing.T) {
	pred := func(a int, b string) bool { return strconv.Itoa(a) == b }

	if !cmp.SliceEqWith([]int{1, 2}, []string{"1", "2"}, pred) {
		t.Error("matching pairs should compare equal")
	}
	if cmp.SliceEqWith([]int{1, 2}, []string{"1", "3"}, pred) {
		t.Error("mismatching pairs should not compare equal")
	}
}

func TestSliceContentEq(t *testing.T) {
	theory := func(a, b []string, then bool) func(*testing.T) {
		return func(t *testing.T) {
			if actual := cmp.SliceContentEq(a, b); actual != then {
				t.Errorf("SliceContentEq(%v, %v): actual=%v, expect=%v", a, b, actual, then)
			}
		}
	}

	t.Run("same content, different order", theory(
		[]string{"a", "b", "c"}, []string{"c", "a", "b"}, true,
	))
	t.Run("duplicates count", theory(
		[]string{"a", "a", "b"}, []string{"a", "b", "b"}, false,
	))
	t.Run("different content", theory(
		[]string{"a"}, []string{"b"}, false,
	))
}

func TestMapEqSubtests(t *testing.T) {
	t.Run("equal maps", func(t *testing.T) {
		a := map[string]int{"x": 1, "y": 2}
		b := map[string]int{"y": 2, "x": 1}
		if !cmp.MapEq(a, b) {
			t.Errorf("MapEq(%v, %v) should be true", a, b)
		}
	})
	t.Run("different values", func(t *testing.T) {
		a := map[string]int{"x": 1}
		b := map[string]int{"x": 2}
		if cmp.MapEq(a, b) {
			t.Errorf("MapEq(%v, %v) should be false", a, b)
		}
	})
	t.Run("different keys", func(t *testing.T) {
		a := map[string]int{"x": 1}
		b := map[string]int{"y": 1}
		if cmp.MapEq(a, b) {
			t.Errorf("MapEq(%v, %v) should be false", a, b)
		}
	})
}
