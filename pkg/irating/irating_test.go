package irating

import "testing"

func TestProjectSmallField(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		if got := Project(2000, 1500, 1, size); got != 0 {
			t.Errorf("Project(fieldSize=%d) = %d, want 0", size, got)
		}
	}
}

func TestProjectMonotoneAndBounded(t *testing.T) {
	ratings := []int{0, 800, 1500, 2500, 6000}
	for _, size := range []int{2, 5, 20, 60} {
		for _, rating := range ratings {
			prev := Project(rating, 1500, 1, size)
			for pos := 1; pos <= size; pos++ {
				got := Project(rating, 1500, pos, size)
				if got > prev {
					t.Fatalf("rating %d field %d: position %d gained %d after %d", rating, size, pos, got, prev)
				}
				if got < MaxLoss || got > MaxGain {
					t.Fatalf("rating %d field %d position %d: %d out of bounds", rating, size, pos, got)
				}
				prev = got
			}
		}
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name                             string
		rating, sof, position, fieldSize int
		want                             int
	}{
		{"average driver mid field", 1500, 1500, 10, 20, 0},
		{"average driver wins", 1500, 1500, 1, 20, 54},
		{"average driver last", 1500, 1500, 20, 20, -60},
		{"unknown rating uses ratio 1", 0, 1500, 1, 20, 54},
		{"strong driver expected near the front", 6000, 1500, 1, 20, 9},
		{"weak driver expected last", 500, 1500, 20, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Project(tt.rating, tt.sof, tt.position, tt.fieldSize); got != tt.want {
				t.Errorf("Project(%d, %d, %d, %d) = %d, want %d", tt.rating, tt.sof, tt.position, tt.fieldSize, got, tt.want)
			}
		})
	}
}

func TestFieldStrength(t *testing.T) {
	if got := FieldStrength([]int{1000, 1500, 2000}); got != 1500 {
		t.Errorf("FieldStrength = %d, want 1500", got)
	}
	if got := FieldStrength(nil); got != 0 {
		t.Errorf("FieldStrength(nil) = %d, want 0", got)
	}
	if got := FieldStrength([]int{1000, 1001}); got != 1001 {
		t.Errorf("FieldStrength rounding = %d, want 1001", got)
	}
}
