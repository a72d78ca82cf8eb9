package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionspeak/internal/capture"
	"visionspeak/internal/config"
	"visionspeak/internal/ocr"
	"visionspeak/internal/preprocess"
	"visionspeak/internal/tts"
)

// loadConfig reads the environment and applies the --engine and --tts flags
// of cmd when they were given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("engine"); f != nil && f.Changed {
		cfg.OCREngine = strings.ToLower(f.Value.String())
	}
	if f := cmd.Flags().Lookup("tts"); f != nil && f.Changed {
		cfg.TTSEngine = strings.ToLower(f.Value.String())
	}
	return cfg, nil
}

// createContextWithTimeout creates a context that ends on SIGINT, SIGTERM or
// after timeoutSecs. A non-positive timeout waits for a signal only.
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func engineConfig(cfg *config.Config, name string) ocr.EngineConfig {
	return ocr.EngineConfig{
		Name:      name,
		Languages: cfg.Languages(),
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		},
	}
}

// buildPipeline creates the configured engine wrapped in a two-pass pipeline.
// The caller closes the returned engine.
func buildPipeline(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ocr.Pipeline, error) {
	engine, err := ocr.NewEngine(ctx, engineConfig(cfg, cfg.OCREngine))
	if err != nil {
		return nil, handleOCRError(err, log)
	}

	event := log.Debug().Str("engine", engine.Name())
	if te, ok := engine.(*ocr.TesseractEngine); ok {
		event = event.Str("tesseract_version", te.Version())
	}
	event.Msg("OCR engine created")

	return ocr.NewPipeline(engine, ocr.PipelineConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Preprocess: preprocess.Options{
			MaxDimension: cfg.MaxImageDimension,
			BlockSize:    cfg.ThresholdBlockSize,
			C:            cfg.ThresholdC,
		},
	}), nil
}

func speechConfig(cfg *config.Config, name string) tts.Config {
	return tts.Config{
		Engine:      name,
		Voice:       cfg.TTSVoice,
		Rate:        cfg.TTSRate,
		Volume:      cfg.TTSVolume,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAITTSModel,
		OpenAIVoice: cfg.OpenAITTSVoice,
	}
}

// buildSpeaker creates the configured voice and audio player.
func buildSpeaker(cfg *config.Config) (*tts.Speaker, error) {
	synth, err := tts.NewSynthesizer(speechConfig(cfg, cfg.TTSEngine))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech engine: %w", err)
	}
	return tts.NewSpeaker(synth, tts.NewCommandPlayer(cfg.AudioPlayer)), nil
}

func cameraConfig(cfg *config.Config) capture.CameraConfig {
	return capture.CameraConfig{
		Device: cfg.CameraDevice,
		Width:  cfg.CameraWidth,
		Height: cfg.CameraHeight,
		FPS:    cfg.CameraFPS,
	}
}

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout or using a smaller image")
	case errors.Is(err, context.Canceled), errors.Is(err, ocr.ErrContextCanceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum 20MB). Try a lower camera resolution")
	case errors.Is(err, ocr.ErrEmptyImage):
		return fmt.Errorf("image is empty")
	case errors.Is(err, ocr.ErrInvalidImage):
		return fmt.Errorf("invalid or corrupted image. Supported formats are JPEG, PNG, GIF, BMP, TIFF and WebP")
	case errors.Is(err, ocr.ErrUnknownEngine):
		return fmt.Errorf("%w. Set OCR_ENGINE or --engine to one of: %s", err, strings.Join(ocr.EngineNames, ", "))
	case errors.Is(err, ocr.ErrMissingCredentials),
		strings.Contains(errStr, "Unauthenticated"),
		strings.Contains(errStr, "invalid_grant"),
		strings.Contains(errStr, "auth:"),
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n"+
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path:\n"+
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
			"2. Or set GOOGLE_CREDENTIALS with inline JSON:\n"+
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n"+
			"3. Or use OCR_ENGINE=tesseract to read offline\n\n"+
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"),
		strings.Contains(errStr, "permission"),
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your service account has the 'Cloud Vision API User' or 'Document AI API User' role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED"),
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud quota exceeded. Check your project quotas in the Google Cloud Console")
	case strings.Contains(errStr, "Failed loading language"),
		strings.Contains(errStr, "traineddata"):
		return fmt.Errorf("tesseract language data missing. Install the packs for OCR_LANGUAGES (e.g. tesseract-ocr-eng, tesseract-ocr-fra): %w", err)
	case errors.Is(err, ocr.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues or service unavailability: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}
