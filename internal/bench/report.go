package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

const ruleWidth = 90

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// WriteOCRReport prints a comparison table with one column per engine.
func WriteOCRReport(w io.Writer, runs []OCRRun) error {
	rule := strings.Repeat("-", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%-28s", "Criterion")
	for _, r := range runs {
		fmt.Fprintf(&b, " %-18s", r.Engine)
	}
	fmt.Fprintf(&b, "\n%s\n", rule)

	row := func(label string, value func(OCRRun) string) {
		fmt.Fprintf(&b, "%-28s", label)
		for _, r := range runs {
			v := "N/A"
			if r.OK() {
				v = value(r)
			}
			fmt.Fprintf(&b, " %-18s", v)
		}
		b.WriteString("\n")
	}

	row("Speed (OCR only)", func(r OCRRun) string { return seconds(r.Duration) })
	row("Words", func(r OCRRun) string { return fmt.Sprint(r.Words) })
	row("Mean confidence", func(r OCRRun) string { return fmt.Sprintf("%.0f%%", r.Confidence*100) })
	row("Digits detected", func(r OCRRun) string { return mark(r.Analysis.Digits) })
	row("Special characters", func(r OCRRun) string { return mark(r.Analysis.SpecialChars) })
	row("Email detected", func(r OCRRun) string { return mark(r.Analysis.Email) })
	row("Currency symbols", func(r OCRRun) string { return mark(r.Analysis.Currency) })
	row("Punctuation", func(r OCRRun) string { return mark(r.Analysis.Punctuation) })
	row("Arabic text detected", func(r OCRRun) string { return mark(r.Analysis.Arabic) })
	row("Text length", func(r OCRRun) string { return fmt.Sprint(r.Analysis.Length) })
	b.WriteString(rule + "\n")

	for _, r := range runs {
		if !r.OK() {
			fmt.Fprintf(&b, "%s failed: %v\n", r.Engine, r.Err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTTSReport prints the speech comparison followed by the rankings.
func WriteTTSReport(w io.Writer, runs []TTSRun) error {
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%-15s %-12s %-12s %-10s %s\n", "TTS System", "Time (s)", "Size (KB)", "Online", "File")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	var ok []TTSRun
	for _, r := range runs {
		if !r.OK() {
			fmt.Fprintf(&b, "%-15s failed: %v\n", r.Engine, r.Err)
			continue
		}
		ok = append(ok, r)
		fmt.Fprintf(&b, "%-15s %-12.3f %-12.2f %-10s %s\n", r.Engine, r.Duration.Seconds(), r.SizeKB, mark(r.Online), r.File)
	}

	if len(ok) == 0 {
		b.WriteString("No TTS systems were successfully tested.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fastest := append([]TTSRun(nil), ok...)
	sort.SliceStable(fastest, func(i, j int) bool { return fastest[i].Duration < fastest[j].Duration })
	smallest := append([]TTSRun(nil), ok...)
	sort.SliceStable(smallest, func(i, j int) bool { return smallest[i].SizeKB < smallest[j].SizeKB })

	fmt.Fprintf(&b, "\n%s\nRANKINGS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Fastest: %s (%s)\n", fastest[0].Engine, seconds(fastest[0].Duration))
	fmt.Fprintf(&b, "Smallest file: %s (%.2f KB)\n", smallest[0].Engine, smallest[0].SizeKB)

	var offline []string
	for _, r := range ok {
		if !r.Online {
			offline = append(offline, r.Engine)
		}
	}
	if len(offline) == 0 {
		b.WriteString("Offline systems: none available\n")
	} else {
		fmt.Fprintf(&b, "Offline systems: %s\n", strings.Join(offline, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonRun struct {
	Run   any    `json:"run"`
	Error string `json:"error,omitempty"`
}

// WriteJSON exports OCR or speech runs with their errors as strings.
func WriteJSON[T OCRRun | TTSRun](w io.Writer, runs []T) error {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		entry := jsonRun{Run: r}
		if err := runErr(r); err != nil {
			entry.Error = err.Error()
		}
		out = append(out, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runErr(r any) error {
	switch v := r.(type) {
	case OCRRun:
		return v.Err
	case TTSRun:
		return v.Err
	}
	return nil
}

// OCRHeaders and OCRRows shape OCR runs for spreadsheet export.
var OCRHeaders = []string{"Timestamp", "Engine", "Duration (s)", "Words", "Confidence", "Digits", "Special", "Email", "Currency", "Arabic", "Length", "Error"}

func OCRRows(runs []OCRRun, at time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(runs))
	for _, r := range runs {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		rows = append(rows, []interface{}{
			at.Format(time.RFC3339), r.Engine, r.Duration.Seconds(), r.Words, r.Confidence,
			r.Analysis.Digits, r.Analysis.SpecialChars, r.Analysis.Email, r.Analysis.Currency,
			r.Analysis.Arabic, r.Analysis.Length, errText,
		})
	}
	return rows
}

// TTSHeaders and TTSRows shape speech runs for spreadsheet export.
var TTSHeaders = []string{"Timestamp", "Engine", "Duration (s)", "Size (KB)", "Online", "File", "Error"}

func TTSRows(runs []TTSRun, at time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(runs))
	for _, r := range runs {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		rows = append(rows, []interface{}{
			at.Format(time.RFC3339), r.Engine, r.Duration.Seconds(), r.SizeKB, r.Online, r.File, errText,
		})
	}
	return rows
}
