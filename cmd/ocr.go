package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionspeak/internal/capture"
	"visionspeak/internal/logger"
	"visionspeak/internal/ocr"
	"visionspeak/pkg/models"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Print the text recognized in an image",
	Long: `Recognize the text in an image without speaking it.

The image is read twice, once as is and once after adaptive thresholding, and
both readings are merged: detections at or below the confidence threshold,
empty texts and repeated texts are dropped, and the rest is joined top to
bottom.

Engines (OCR_ENGINE or --engine):
  tesseract  - local recognition, needs tesseract and its language packs
  vision     - Google Cloud Vision, needs GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
  documentai - Google Document AI, also needs GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID`,
	Example: `  # Print the text of a photo
  visionspeak ocr sign.jpg

  # Save the text with metadata to a file
  visionspeak ocr sign.jpg --metadata -o sign.txt

  # Output every kept detection as JSON using Cloud Vision
  visionspeak ocr sign.jpg --json --engine vision`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// OCROutput represents the JSON output structure when --json flag is used
type OCROutput struct {
	Text               string             `json:"text"`
	Confidence         float64            `json:"confidence"`
	Engine             string             `json:"engine"`
	Candidates         int                `json:"candidates"`
	Detections         []models.Detection `json:"detections,omitempty"`
	ProcessedAt        time.Time          `json:"processed_at,omitempty"`
	ProcessingDuration string             `json:"processing_duration,omitempty"`
	FileName           string             `json:"file_name"`
	FileSize           int64              `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().BoolP("metadata", "m", false, "Include metadata in output")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
	ocrCmd.Flags().String("engine", "", "OCR engine (tesseract, vision, documentai)")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", imagePath).
		Str("engine", cfg.OCREngine).
		Str("output", outputPath).
		Bool("metadata", includeMetadata).
		Bool("json", jsonOutput).
		Msg("Starting OCR processing")

	fileInfo, err := validateImageFile(imagePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	pipeline, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pipeline.Engine().Close()

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	result, err := pipeline.Run(ctx, image)
	if err != nil {
		return handleOCRError(err, log)
	}

	log.Info().
		Int("detections", len(result.Detections)).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR processing completed successfully")

	return outputResults(result, fileInfo, outputPath, jsonOutput, includeMetadata, log)
}

// validateImageFile checks if the file exists, is readable and looks like an image
func validateImageFile(imagePath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", imagePath).Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", imagePath).Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if !capture.IsImageFile(imagePath) {
		log.Warn().Str("file", imagePath).Msg("File does not have an image extension")
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > ocr.MaxImageSizeBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", ocr.MaxImageSizeBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxImageSizeBytes)
	}

	return fileInfo, nil
}

// formatResult renders the OCR result as JSON or text
func formatResult(result *ocr.OCRResult, fileInfo os.FileInfo, jsonOutput, includeMetadata bool) ([]byte, error) {
	if jsonOutput {
		out := OCROutput{
			Text:               result.Text,
			Confidence:         result.Confidence,
			Engine:             result.Engine,
			Candidates:         result.Candidates,
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
		}
		if includeMetadata {
			out.Detections = result.Detections
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to create JSON output: %w", err)
		}
		return append(data, '\n'), nil
	}

	var output strings.Builder
	if includeMetadata {
		fmt.Fprintf(&output, "=== OCR Results for %s ===\n", filepath.Base(fileInfo.Name()))
		fmt.Fprintf(&output, "File size: %d bytes\n", fileInfo.Size())
		fmt.Fprintf(&output, "Engine: %s\n", result.Engine)
		fmt.Fprintf(&output, "Detections kept: %d of %d\n", len(result.Detections), result.Candidates)
		if len(result.Detections) > 0 {
			fmt.Fprintf(&output, "Confidence: %.1f%%\n", result.Confidence*100)
		}
		fmt.Fprintf(&output, "Processing time: %v\n", result.ProcessingDuration)
		fmt.Fprintf(&output, "Processed at: %s\n", result.ProcessedAt.Format(time.RFC3339))
		output.WriteString("\n=== Extracted Text ===\n\n")
	}
	output.WriteString(result.Text)
	output.WriteString("\n")

	return []byte(output.String()), nil
}

// outputResults formats and outputs the OCR results
func outputResults(result *ocr.OCRResult, fileInfo os.FileInfo, outputPath string, jsonOutput, includeMetadata bool, log zerolog.Logger) error {
	outputData, err := formatResult(result, fileInfo, jsonOutput, includeMetadata)
	if err != nil {
		log.Error().Err(err).Msg("Failed to format output")
		return err
	}

	if outputPath == "" {
		if _, err := os.Stdout.Write(outputData); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(outputData)).
		Msg("OCR results written to file")

	return nil
}
