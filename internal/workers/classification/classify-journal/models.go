// internal/workers/classification/classify-journal/models.go
package classifyjournal

import "journal-classifier/internal/models"

// Input is one call: the request plus the attempt it belongs to.
type Input struct {
	Request models.Request `json:"request"`
	Attempt int            `json:"attempt"`
}
