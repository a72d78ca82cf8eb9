package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionspeak/internal/capture"
	"visionspeak/internal/config"
	"visionspeak/internal/logger"
	"visionspeak/internal/reader"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Capture text and read it aloud",
	Long: `Capture an image from the camera (or a file), recognize its text and speak it.

In interactive mode the camera stays open and commands are read from stdin:
  Enter  capture and read
  s      stop speaking
  r      repeat the last text
  q      quit

The camera is grabbed through ffmpeg from CAMERA_DEVICE. Speech uses TTS_ENGINE
(espeak offline, openai online) and is played with aplay or ffplay unless
AUDIO_PLAYER names another command.`,
	Example: `  # Read one camera frame aloud
  visionspeak read

  # Read a photo aloud
  visionspeak read --image sign.jpg

  # Keep the camera open and read on Enter
  visionspeak read --interactive

  # Print only, no speech
  visionspeak read --image sign.jpg --mute`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().String("image", "", "Read this image file instead of the camera")
	readCmd.Flags().BoolP("interactive", "i", false, "Read commands from stdin until q")
	readCmd.Flags().Bool("mute", false, "Print the text without speaking it")
	readCmd.Flags().String("engine", "", "OCR engine (tesseract, vision, documentai)")
	readCmd.Flags().String("tts", "", "Speech engine (espeak, openai)")
	readCmd.Flags().Int("timeout", 0, "Overall timeout in seconds (0: none)")
}

// statusPrinter prints status updates from a single goroutine. The returned
// stop function flushes the pending updates.
func statusPrinter(w io.Writer) (reader.StatusFunc, func()) {
	updates := make(chan reader.Update, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range updates {
			fmt.Fprintln(w, u.Headline())
			if u.Detail != "" && u.Status.Terminal() {
				fmt.Fprintln(w, u.Detail)
			}
		}
	}()

	stop := func() {
		close(updates)
		<-done
	}
	return func(u reader.Update) { updates <- u }, stop
}

// newReader wires source, OCR pipeline and voice into a started reader.
func newReader(ctx context.Context, cmd *cobra.Command, cfg *config.Config, source capture.Source, log zerolog.Logger) (*reader.Reader, func(), error) {
	pipeline, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	var voice reader.Voice
	if mute, _ := cmd.Flags().GetBool("mute"); !mute {
		speaker, err := buildSpeaker(cfg)
		if err != nil {
			pipeline.Engine().Close()
			return nil, nil, err
		}
		log.Debug().Str("voice", speaker.Synthesizer().Name()).Msg("Voice ready")
		voice = speaker
	}

	onStatus, stopPrinter := statusPrinter(cmd.OutOrStdout())
	r := reader.New(source, pipeline, voice, onStatus)

	cleanup := func() {
		if err := r.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close reader")
		}
		stopPrinter()
		pipeline.Engine().Close()
	}

	if err := r.Start(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}

func runRead(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("read")

	imagePath, _ := cmd.Flags().GetString("image")
	interactive, _ := cmd.Flags().GetBool("interactive")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	var source capture.Source
	if imagePath != "" {
		if _, err := validateImageFile(imagePath, log); err != nil {
			return err
		}
		source, err = capture.NewFileSource(imagePath)
	} else {
		source, err = capture.NewCameraSource(cameraConfig(cfg))
	}
	if err != nil {
		return err
	}

	r, cleanup, err := newReader(ctx, cmd, cfg, source, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if interactive {
		return readInteractive(ctx, r, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	}

	outcome, err := r.Read(ctx)
	if err != nil {
		return err
	}
	r.Wait()

	if outcome.Err != nil {
		if outcome.Status == reader.StatusCameraError {
			return outcome.Err
		}
		return handleOCRError(outcome.Err, log)
	}
	return nil
}

// readInteractive runs the Enter/s/r/q loop until q, EOF or ctx ends.
func readInteractive(ctx context.Context, r *reader.Reader, in io.Reader, out io.Writer, log zerolog.Logger) error {
	fmt.Fprintln(out, "Press Enter to read, s to stop speaking, r to repeat, q to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				r.Wait()
				return nil
			}
			switch line {
			case "":
				if _, err := r.Read(ctx); err != nil {
					fmt.Fprintln(out, err)
				}
			case "s", "stop":
				r.Stop()
			case "r", "repeat":
				if err := r.Repeat(); err != nil {
					fmt.Fprintln(out, err)
				}
			case "q", "quit", "exit":
				log.Info().Msg("Quit requested")
				return nil
			default:
				fmt.Fprintf(out, "Unknown command %q. Press Enter, s, r or q.\n", line)
			}
		}
	}
}
