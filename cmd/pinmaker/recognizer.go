package main

import (
	"github.com/kraftysprouts/pinmaker/detect"
	"github.com/kraftysprouts/pinmaker/ocr"
)

// newRecognizer initializes the OCR engine. Binaries built without the ocr
// tag return an error here and the service runs without text detection.
func newRecognizer(language string) (detect.Recognizer, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			return nil, err
		}
	}
	return detect.NewTesseractRecognizer(client), nil
}
