package ocr

import (
	"os"

	"google.golang.org/api/option"
)

// googleClientOptions returns credential options from GOOGLE_CREDENTIALS or
// GOOGLE_APPLICATION_CREDENTIALS. An empty result means the client falls back
// to Application Default Credentials.
func googleClientOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}

// languageHints maps tesseract language codes to the BCP-47 hints used by
// the Google APIs. Unknown three letter codes are dropped.
func languageHints(languages []string) []string {
	bcp47 := map[string]string{
		"eng": "en",
		"fra": "fr",
		"ara": "ar",
		"deu": "de",
		"spa": "es",
		"ita": "it",
		"por": "pt",
		"nld": "nl",
	}

	var hints []string
	for _, lang := range languages {
		if code, ok := bcp47[lang]; ok {
			hints = append(hints, code)
		} else if len(lang) == 2 {
			hints = append(hints, lang)
		}
	}
	return hints
}
