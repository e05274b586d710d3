package reservation

import (
	"encoding/base64"
	"fmt"
	"strings"

	"travelbooking/internal/pkg/apperr"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxCNICPhotoBytes = 2 << 20

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ValidateCNICPhoto checks an inline base64 data URI: image content, bounded size.
func ValidateCNICPhoto(dataURI string, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCNICPhotoBytes
	}

	header, payload, ok := strings.Cut(strings.TrimSpace(dataURI), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return apperr.Validation("cnicPhotoDataUri", "CNIC photo must be an uploaded image")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return apperr.Validation("cnicPhotoDataUri", fmt.Sprintf("CNIC photo must be smaller than %d KB", maxBytes/1024))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return apperr.Validation("cnicPhotoDataUri", "CNIC photo could not be read")
	}
	if len(data) > maxBytes {
		return apperr.Validation("cnicPhotoDataUri", fmt.Sprintf("CNIC photo must be smaller than %d KB", maxBytes/1024))
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedPhotoTypes...) {
		return apperr.Validation("cnicPhotoDataUri", "CNIC photo must be a JPEG, PNG, WEBP or GIF image")
	}
	return nil
}
