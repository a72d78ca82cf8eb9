package models

import (
	"image"
	"testing"
)

func TestDetectionTop(t *testing.T) {
	tests := []struct {
		name string
		det  Detection
		want int
	}{
		{"no box", Detection{Text: "a"}, 0},
		{"first vertex", Detection{Box: []Point{{X: 4, Y: 12}, {X: 40, Y: 9}}}, 12},
		{"from rect", Detection{Box: BoxFromRect(image.Rect(3, 7, 30, 20))}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.det.Top(); got != tt.want {
				t.Errorf("Top() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoxFromRect(t *testing.T) {
	box := BoxFromRect(image.Rect(1, 2, 10, 20))
	if len(box) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(box))
	}
	if box[0] != (Point{X: 1, Y: 2}) || box[2] != (Point{X: 10, Y: 20}) {
		t.Errorf("unexpected polygon: %+v", box)
	}
}

func TestReadingEmpty(t *testing.T) {
	if !(Reading{Candidates: 3}).Empty() {
		t.Error("reading without detections should be empty")
	}
	if (Reading{Detections: []Detection{{Text: "x"}}}).Empty() {
		t.Error("reading with detections should not be empty")
	}
}
