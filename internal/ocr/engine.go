package ocr

import (
	"context"
	"fmt"
	"strings"
)

// EngineConfig selects and configures an Engine.
type EngineConfig struct {
	Name       string   // tesseract, vision or documentai
	Languages  []string // tesseract codes, e.g. eng, fra
	DocumentAI DocumentAIConfig
}

// EngineNames lists the engines NewEngine understands.
var EngineNames = []string{"tesseract", "vision", "documentai"}

// NewEngine creates the engine named in config.
func NewEngine(ctx context.Context, config EngineConfig) (Engine, error) {
	const op = "NewEngine"

	switch strings.ToLower(config.Name) {
	case "", "tesseract":
		return NewTesseractEngine(config.Languages...), nil
	case "vision":
		return NewGoogleVisionEngine(ctx, config.Languages...)
	case "documentai":
		return NewDocumentAIEngine(ctx, config.DocumentAI)
	default:
		return nil, NewOCRError(op, ErrUnknownEngine, fmt.Sprintf("%q (available: %s)", config.Name, strings.Join(EngineNames, ", ")))
	}
}
