package cmd

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionspeak/internal/logger"
	"visionspeak/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve OCR over HTTP for the mobile app",
	Long: `Start the HTTP server used by the mobile client.

POST /ocr takes a multipart form with an "image" file and answers
{"text": "..."} with the merged reading. Errors are answered as
{"text": "Error: ..."} so that the client can speak them unchanged.
GET /healthz reports the configured engine.`,
	Example: `  # Listen on the default address (:5000)
  visionspeak serve

  # Use Cloud Vision on another port
  visionspeak serve --addr :8080 --engine vision

  # Try it
  curl -F image=@sign.jpg http://localhost:5000/ocr`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: SERVER_ADDR or :5000)")
	serveCmd.Flags().String("engine", "", "OCR engine (tesseract, vision, documentai)")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := createContextWithTimeout(0, log)
	defer cancel()

	pipeline, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pipeline.Engine().Close()

	return server.New(pipeline, pipeline.Engine().Name()).ListenAndServe(ctx, addr, shutdownTimeout)
}
