package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visionspeak/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "visionspeak",
	Short: "VisionSpeak - reads printed text aloud",
	Long: `VisionSpeak reads printed text aloud for blind and visually impaired users.

It captures an image from a camera, a file, a watched folder or an HTTP upload,
recognizes the text twice (on the original and on a contrast-enhanced copy),
merges both readings and speaks the result.

Engines are selected with OCR_ENGINE (tesseract, vision, documentai) and
TTS_ENGINE (espeak, openai). See the README for all environment variables.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("VisionSpeak executed without a command")

		cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
