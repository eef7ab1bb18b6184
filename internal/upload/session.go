package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/histofy/histofy/internal/errors"
)

// Status represents the lifecycle state of an upload session.
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusStaged    Status = "staged"
	StatusSubmitted Status = "submitted"
)

// Session owns the lifecycle of one candidate image from selection to
// disposal. At most one image is staged at a time; staging a new image
// replaces the previous one.
type Session struct {
	status   Status
	image    []byte
	imageRef string
	mime     string

	// generation increments on every stage/discard so that recognition
	// results for a replaced or discarded image can be detected as stale.
	generation uint64
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{status: StatusEmpty}
}

// Stage validates and stages an image payload, replacing any previously
// staged image. Fails with INVALID_MEDIA_TYPE if the payload is not an
// image, or MEDIA_TOO_LARGE if it exceeds maxBytes.
func (s *Session) Stage(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return errors.NewValidation("image payload is empty")
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return errors.NewInvalidMediaType(mime)
	}

	if int64(len(data)) > maxBytes {
		return errors.NewMediaTooLarge(maxBytes, int64(len(data)))
	}

	sum := sha256.Sum256(data)

	// The old image reference, if any, is released here.
	s.image = data
	s.imageRef = "sha256:" + hex.EncodeToString(sum[:])
	s.mime = mime
	s.status = StatusStaged
	s.generation++

	return nil
}

// MarkSubmitted records that identification has been requested for the
// staged image. Fails with ILLEGAL_TRANSITION unless an image is staged.
func (s *Session) MarkSubmitted() error {
	if s.status != StatusStaged {
		return errors.NewIllegalTransition(string(s.status), "submit")
	}
	s.status = StatusSubmitted
	return nil
}

// Discard resets the session to empty. Valid from any state. Any
// recognition request tied to the discarded image becomes stale because
// the generation advances.
func (s *Session) Discard() {
	s.image = nil
	s.imageRef = ""
	s.mime = ""
	s.status = StatusEmpty
	s.generation++
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// CurrentImage returns the reference of the staged image, if any.
func (s *Session) CurrentImage() (string, bool) {
	if s.status == StatusEmpty {
		return "", false
	}
	return s.imageRef, true
}

// ImageBytes returns the staged image payload, or nil if the session is empty.
func (s *Session) ImageBytes() []byte {
	return s.image
}

// MediaType returns the sniffed media type of the staged image.
func (s *Session) MediaType() string {
	return s.mime
}

// Generation returns the staging generation, which advances on every
// stage or discard.
func (s *Session) Generation() uint64 {
	return s.generation
}
