package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"visionspeak/internal/capture"
	"visionspeak/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Read aloud every image saved into a directory",
	Long: `Watch a directory and read aloud each image that is created or
overwritten in it, for example the upload folder of a phone or a scanner.

A file is read once it has not changed for the settle delay, so images that
are still being written are not picked up half-finished.`,
	Example: `  # Read scans as they arrive
  visionspeak watch ~/Scans

  # Print instead of speaking, with a longer settle delay
  visionspeak watch ~/Scans --mute --settle 1s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("settle", capture.DefaultSettleDelay, "Quiet time before a new file is read")
	watchCmd.Flags().Bool("mute", false, "Print the text without speaking it")
	watchCmd.Flags().String("engine", "", "OCR engine (tesseract, vision, documentai)")
	watchCmd.Flags().String("tts", "", "Speech engine (espeak, openai)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")

	settle, _ := cmd.Flags().GetDuration("settle")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	watcher, err := capture.NewWatcher(args[0], settle)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(0, log)
	defer cancel()

	r, cleanup, err := newReader(ctx, cmd, cfg, nil, log)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	for path := range files {
		image, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to read new image")
			continue
		}

		log.Info().Str("file", filepath.Base(path)).Msg("Reading new image")

		if _, err := r.ReadImage(ctx, image); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Image skipped")
		}
	}

	r.Wait()
	return nil
}
