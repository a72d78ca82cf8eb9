package ocr

import (
	"math"
	"testing"

	"visionspeak/pkg/models"
)

func det(text string, conf float64, y int) models.Detection {
	return models.Detection{
		Box:        []models.Point{{X: 0, Y: y}, {X: 10, Y: y}, {X: 10, Y: y + 10}, {X: 0, Y: y + 10}},
		Text:       text,
		Confidence: conf,
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name           string
		passes         [][]models.Detection
		wantText       string
		wantConfidence float64
		wantKept       int
		wantCandidates int
	}{
		{
			name: "case-insensitive duplicate across passes",
			passes: [][]models.Detection{
				{det("Hello", 0.9, 10)},
				{det("hello", 0.4, 10), det("World", 0.5, 30)},
			},
			wantText:       "Hello World",
			wantConfidence: 0.7,
			wantKept:       2,
			wantCandidates: 3,
		},
		{
			name: "threshold is exclusive",
			passes: [][]models.Detection{
				{det("edge", 0.3, 5), det("kept", 0.31, 8)},
			},
			wantText:       "kept",
			wantConfidence: 0.31,
			wantKept:       1,
			wantCandidates: 2,
		},
		{
			name: "sorted by top edge",
			passes: [][]models.Detection{
				{det("third", 0.8, 90), det("first", 0.8, 10)},
				{det("second", 0.8, 50)},
			},
			wantText:       "first second third",
			wantConfidence: 0.8,
			wantKept:       3,
			wantCandidates: 3,
		},
		{
			name: "ties keep input order",
			passes: [][]models.Detection{
				{det("left", 0.6, 20), det("right", 0.6, 20)},
			},
			wantText:       "left right",
			wantConfidence: 0.6,
			wantKept:       2,
			wantCandidates: 2,
		},
		{
			name: "blank and padded text",
			passes: [][]models.Detection{
				{det("   ", 0.99, 1), det("  Exit ", 0.9, 2)},
				{det("EXIT", 0.95, 3)},
			},
			wantText:       "Exit",
			wantConfidence: 0.9,
			wantKept:       1,
			wantCandidates: 3,
		},
		{
			name: "first occurrence wins even if weaker",
			passes: [][]models.Detection{
				{det("Stop", 0.4, 10)},
				{det("STOP", 0.99, 10)},
			},
			wantText:       "Stop",
			wantConfidence: 0.4,
			wantKept:       1,
			wantCandidates: 2,
		},
		{
			name: "nothing survives",
			passes: [][]models.Detection{
				{det("noise", 0.1, 1)},
				{det("blur", 0.25, 2)},
			},
			wantCandidates: 2,
		},
		{
			name:   "no detections at all",
			passes: [][]models.Detection{nil, {}},
		},
		{
			name: "missing box sorts to the top",
			passes: [][]models.Detection{
				{det("below", 0.7, 40), {Text: "boxless", Confidence: 0.7}},
			},
			wantText:       "boxless below",
			wantConfidence: 0.7,
			wantKept:       2,
			wantCandidates: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(DefaultConfidenceThreshold, tt.passes...)

			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if len(got.Detections) != tt.wantKept {
				t.Errorf("kept %d detections, want %d", len(got.Detections), tt.wantKept)
			}
			if got.Candidates != tt.wantCandidates {
				t.Errorf("Candidates = %d, want %d", got.Candidates, tt.wantCandidates)
			}
			if got.Empty() != (tt.wantKept == 0) {
				t.Errorf("Empty() = %v with %d kept", got.Empty(), tt.wantKept)
			}
		})
	}
}

func TestMergeDefaultThreshold(t *testing.T) {
	got := Merge(0, []models.Detection{det("low", 0.2, 1), det("high", 0.5, 2)})
	if got.Text != "high" {
		t.Errorf("Text = %q, want %q", got.Text, "high")
	}
}

func TestMergeCustomThreshold(t *testing.T) {
	got := Merge(0.6, []models.Detection{det("low", 0.5, 1), det("high", 0.7, 2)})
	if got.Text != "high" {
		t.Errorf("Text = %q, want %q", got.Text, "high")
	}
}

func TestMergeIdempotentOnDuplicates(t *testing.T) {
	pass := []models.Detection{det("Read", 0.8, 1), det("me", 0.8, 2)}
	once := Merge(DefaultConfidenceThreshold, pass)
	twice := Merge(DefaultConfidenceThreshold, pass, pass, pass)
	if once.Text != twice.Text || once.Confidence != twice.Confidence {
		t.Errorf("repeating a pass changed the reading: %+v vs %+v", once, twice)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	pass := []models.Detection{det("  padded  ", 0.9, 30), det("top", 0.9, 1)}
	Merge(DefaultConfidenceThreshold, pass)
	if pass[0].Text != "  padded  " || pass[1].Text != "top" {
		t.Errorf("input was modified: %+v", pass)
	}
}
