package ocr

import (
	"sort"
	"strings"

	"visionspeak/pkg/models"
)

// DefaultConfidenceThreshold is the minimum confidence a detection must exceed.
const DefaultConfidenceThreshold = 0.3

// Merge combines the detections of several passes into one reading.
//
// Passes are concatenated in order. A detection survives when its confidence
// is strictly above threshold and its lower-cased, trimmed text is non-empty
// and not already taken by an earlier survivor. Survivors are ordered by the
// y coordinate of their top-left vertex (stable for ties), and their trimmed
// texts are joined with single spaces. A threshold <= 0 selects
// DefaultConfidenceThreshold.
func Merge(threshold float64, passes ...[]models.Detection) models.Reading {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	var reading models.Reading
	seen := make(map[string]struct{})

	for _, pass := range passes {
		reading.Candidates += len(pass)
		for _, det := range pass {
			if det.Confidence <= threshold {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(det.Text))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			det.Text = strings.TrimSpace(det.Text)
			reading.Detections = append(reading.Detections, det)
		}
	}

	if len(reading.Detections) == 0 {
		return reading
	}

	sort.SliceStable(reading.Detections, func(i, j int) bool {
		return reading.Detections[i].Top() < reading.Detections[j].Top()
	})

	texts := make([]string, len(reading.Detections))
	var sum float64
	for i, det := range reading.Detections {
		texts[i] = det.Text
		sum += det.Confidence
	}
	reading.Text = strings.Join(texts, " ")
	reading.Confidence = sum / float64(len(reading.Detections))

	return reading
}
