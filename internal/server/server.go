// Package server exposes the OCR pipeline over HTTP for the mobile client.
//
// Endpoints:
//   - POST /ocr: multipart form with an "image" file, answers {"text": "..."}
//   - GET /healthz: liveness and the configured engine
//
// Failures are answered with {"text": "Error: ..."} so that clients can read
// the message aloud unchanged.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visionspeak/internal/logger"
	"visionspeak/internal/ocr"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// formOverhead is the multipart framing allowed on top of the image.
	formOverhead = 1 << 20
)

// Recognizer turns an encoded image into a merged reading.
type Recognizer interface {
	Run(ctx context.Context, image []byte) (*ocr.OCRResult, error)
}

// Response is the body of every /ocr answer.
type Response struct {
	Text       string             `json:"text"`
	Confidence *float64           `json:"confidence,omitempty"`
	Detections []ocrDetectionView `json:"detections,omitempty"`
}

type ocrDetectionView struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Top        int     `json:"top"`
}

// Server serves the OCR endpoint.
type Server struct {
	router     *gin.Engine
	recognizer Recognizer
	engineName string
	log        zerolog.Logger
}

// New creates a server reading images with recognizer.
func New(recognizer Recognizer, engineName string) *Server {
	s := &Server{
		router:     gin.New(),
		recognizer: recognizer,
		engineName: engineName,
		log:        logger.WithComponent("server"),
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.router.POST("/ocr", s.handleOCR)
	s.router.GET("/healthz", s.handleHealth)

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("engine", s.engineName).Msg("HTTP server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// requestLogger tags each request with an ID and logs its outcome.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		log := logger.WithRequestID(requestID)
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("Request handled")
	}
}

func errorResponse(c *gin.Context, status int, err error) {
	c.JSON(status, Response{Text: fmt.Sprintf("Error: %v", err)})
}

func (s *Server) handleOCR(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ocr.MaxImageSizeBytes+formOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, ocr.ErrImageTooLarge)
			return
		}
		log.Warn().Err(err).Msg("Request without image")
		errorResponse(c, http.StatusBadRequest, errors.New("no image provided"))
		return
	}
	if fileHeader.Size > ocr.MaxImageSizeBytes {
		errorResponse(c, http.StatusRequestEntityTooLarge, ocr.ErrImageTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	log.Debug().
		Str("filename", fileHeader.Filename).
		Int("bytes", len(image)).
		Msg("Image received")

	result, err := s.recognizer.Run(ctx, image)
	if err != nil {
		log.Error().Err(err).Msg("OCR failed")
		errorResponse(c, statusFor(err), err)
		return
	}

	resp := Response{Text: result.Text}
	if c.Query("verbose") == "true" {
		resp.Confidence = &result.Confidence
		for _, d := range result.Detections {
			resp.Detections = append(resp.Detections, ocrDetectionView{Text: d.Text, Confidence: d.Confidence, Top: d.Top()})
		}
	}

	log.Info().
		Int("text_length", len(result.Text)).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("OCR completed")

	c.JSON(http.StatusOK, resp)
}

// statusFor maps OCR errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ocr.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ocr.ErrInvalidImage), errors.Is(err, ocr.ErrEmptyImage):
		return http.StatusBadRequest
	case errors.Is(err, ocr.ErrContextCanceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "engine": s.engineName})
}
