package domain_test

import (
	"testing"

	"fatrate/internal/domain"
)

func TestTitlePickerBands(t *testing.T) {
	// Pin the pick to index 0 so each band maps to a known title.
	picker := domain.NewTitlePickerFunc(func(n int) int { return 0 })

	tests := []struct {
		name     string
		position int
		total    int
		bmi      float64
		want     string
	}{
		{"first place", 1, 5, 33.0, "Mega Fatlord"},
		{"last place", 5, 5, 16.0, "Walking Stick"},
		{"middle fat", 2, 5, 27.0, "Piggy"},
		{"middle skinny", 3, 5, 17.0, "Stick"},
		{"middle normal", 3, 5, 22.0, "Perfectly Normal"},
		{"band bounds are exclusive", 2, 5, 25.0, "Perfectly Normal"},
		{"single user chat gets fat leader", 1, 1, 17.0, "Mega Fatlord"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := picker.Pick(tc.position, tc.total, tc.bmi)
			if got != tc.want {
				t.Errorf("Pick(%d, %d, %v) = %q; want %q",
					tc.position, tc.total, tc.bmi, got, tc.want)
			}
		})
	}
}

func TestTitlePickerUsesFullSet(t *testing.T) {
	idx := 0
	picker := domain.NewTitlePickerFunc(func(n int) int {
		if n != 10 {
			t.Fatalf("expected set of 10 titles, picker asked for [0, %d)", n)
		}
		i := idx % n
		idx++
		return i
	})

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		seen[picker.Pick(1, 3, 30.0)] = true
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 distinct fat-leader titles, got %d", len(seen))
	}
}

func TestTitlePickerDefaultRandom(t *testing.T) {
	picker := domain.NewTitlePicker()
	for i := 0; i < 100; i++ {
		if got := picker.Pick(2, 4, 22.0); got == "" {
			t.Fatal("picker returned empty title")
		}
	}
}
