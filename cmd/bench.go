package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionspeak/internal/bench"
	"visionspeak/internal/config"
	"visionspeak/internal/logger"
	"visionspeak/internal/ocr"
	"visionspeak/internal/preprocess"
	"visionspeak/internal/sheets"
	"visionspeak/internal/tts"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare OCR or speech engines",
	Long: `Run the comparison harnesses used to choose the engines.

  bench ocr  reads a multilingual test card with each OCR engine
  bench tts  synthesizes a sample text with each speech engine

Results are printed as a table, or as JSON with --json. With --sheet they are
also appended to the spreadsheet in GOOGLE_SHEET_URL.`,
}

var benchOCRCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Compare OCR engines on the multilingual test card",
	Example: `  # Compare the local engine with Cloud Vision
  visionspeak bench ocr --engines tesseract,vision

  # Keep the generated card and benchmark a photo instead
  visionspeak bench ocr --save-sample card.png
  visionspeak bench ocr --image menu.jpg --json`,
	Args: cobra.NoArgs,
	RunE: runBenchOCR,
}

var benchTTSCmd = &cobra.Command{
	Use:   "tts",
	Short: "Compare speech engines on a sample text",
	Example: `  # Compare both engines and keep the clips in ./tts_output
  visionspeak bench tts

  # Export the timings to a sheet tab named TTS
  visionspeak bench tts --sheet TTS`,
	Args: cobra.NoArgs,
	RunE: runBenchTTS,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.AddCommand(benchOCRCmd, benchTTSCmd)

	benchCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	benchCmd.PersistentFlags().String("sheet", "", "Also append the results to this tab of GOOGLE_SHEET_URL")
	benchCmd.PersistentFlags().Int("timeout", 300, "Overall timeout in seconds")

	benchOCRCmd.Flags().String("engines", "tesseract", "Comma separated OCR engines ("+strings.Join(ocr.EngineNames, ", ")+")")
	benchOCRCmd.Flags().String("image", "", "Benchmark this image instead of the generated test card")
	benchOCRCmd.Flags().String("save-sample", "", "Write the generated test card to this PNG file")

	benchTTSCmd.Flags().String("engines", strings.Join(tts.EngineNames, ","), "Comma separated speech engines")
	benchTTSCmd.Flags().String("text", bench.DefaultTTSText, "Text to synthesize")
	benchTTSCmd.Flags().String("out", "", "Directory for the clips (default: BENCH_OUTPUT_DIR or tts_output)")
}

func splitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// sampleImage returns the benchmark image, rendering the test card when no
// image path is given.
func sampleImage(imagePath, savePath string, log zerolog.Logger) ([]byte, error) {
	if imagePath != "" {
		if _, err := validateImageFile(imagePath, log); err != nil {
			return nil, err
		}
		return os.ReadFile(imagePath)
	}

	img, err := bench.RenderSample()
	if err != nil {
		return nil, fmt.Errorf("failed to render test card: %w", err)
	}
	data, err := preprocess.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	if savePath != "" {
		if err := os.WriteFile(savePath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to save test card: %w", err)
		}
		log.Info().Str("file", savePath).Msg("Test card saved")
	}
	return data, nil
}

func runBenchOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("bench")

	engineList, _ := cmd.Flags().GetString("engines")
	imagePath, _ := cmd.Flags().GetString("image")
	savePath, _ := cmd.Flags().GetString("save-sample")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	image, err := sampleImage(imagePath, savePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	var engines []ocr.Engine
	var failed []bench.OCRRun
	for _, name := range splitNames(engineList) {
		engine, err := ocr.NewEngine(ctx, engineConfig(cfg, name))
		if err != nil {
			log.Warn().Err(err).Str("engine", name).Msg("Engine unavailable")
			failed = append(failed, bench.OCRRun{Engine: name, Err: err})
			continue
		}
		defer engine.Close()
		engines = append(engines, engine)
	}

	runs := append(bench.RunOCR(ctx, engines, image), failed...)

	if err := writeBenchOutput(cmd, runs, bench.WriteOCRReport); err != nil {
		return err
	}
	return exportRows(ctx, cmd, cfg, bench.OCRHeaders, bench.OCRRows(runs, time.Now()), log)
}

func runBenchTTS(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("bench")

	engineList, _ := cmd.Flags().GetString("engines")
	text, _ := cmd.Flags().GetString("text")
	outDir, _ := cmd.Flags().GetString("out")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.BenchOutputDir
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	var synths []tts.Synthesizer
	var failed []bench.TTSRun
	for _, name := range splitNames(engineList) {
		synth, err := tts.NewSynthesizer(speechConfig(cfg, name))
		if err != nil {
			log.Warn().Err(err).Str("engine", name).Msg("Engine unavailable")
			failed = append(failed, bench.TTSRun{Engine: name, Err: err})
			continue
		}
		defer synth.Close()
		synths = append(synths, synth)
	}

	runs, err := bench.RunTTS(ctx, synths, text, outDir)
	if err != nil {
		return err
	}
	runs = append(runs, failed...)

	if err := writeBenchOutput(cmd, runs, bench.WriteTTSReport); err != nil {
		return err
	}
	return exportRows(ctx, cmd, cfg, bench.TTSHeaders, bench.TTSRows(runs, time.Now()), log)
}

// writeBenchOutput prints the runs as JSON or as a report table.
func writeBenchOutput[T bench.OCRRun | bench.TTSRun](cmd *cobra.Command, runs []T, report func(io.Writer, []T) error) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return bench.WriteJSON(cmd.OutOrStdout(), runs)
	}
	return report(cmd.OutOrStdout(), runs)
}

// exportRows appends rows to the --sheet tab when one was requested.
func exportRows(ctx context.Context, cmd *cobra.Command, cfg *config.Config, headers []string, rows [][]interface{}, log zerolog.Logger) error {
	sheetName, _ := cmd.Flags().GetString("sheet")
	if sheetName == "" {
		return nil
	}
	if cfg.GoogleSheetURL == "" {
		return fmt.Errorf("--sheet requires GOOGLE_SHEET_URL to be set")
	}

	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	if err := svc.WriteRows(ctx, sheetName, headers, rows); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	log.Info().Str("sheet", sheetName).Int("rows", len(rows)).Msg("Results exported")
	return nil
}
