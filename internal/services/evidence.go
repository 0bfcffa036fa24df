package services

import (
	"github.com/gabriel-vasile/mimetype"
)

var evidenceTypes = []string{"image/png", "image/jpeg"}

// DetectEvidence checks an uploaded image against the size cap and the allowed
// formats, returning its content type.
func DetectEvidence(blob []byte, maxBytes int64) (string, error) {
	if int64(len(blob)) > maxBytes {
		return "", ErrEvidenceTooLarge
	}

	mtype := mimetype.Detect(blob)
	for _, allowed := range evidenceTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrEvidenceType
}
