package upload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/histofy/histofy/internal/errors"
)

const testMaxBytes = 10 * 1024 * 1024

// pngPayload returns a payload that sniffs as image/png.
func pngPayload(extra int) []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	return append(header, bytes.Repeat([]byte{0}, extra)...)
}

func TestNewSession_Empty(t *testing.T) {
	s := NewSession()

	require.Equal(t, StatusEmpty, s.Status())
	_, ok := s.CurrentImage()
	require.False(t, ok)
	require.Nil(t, s.ImageBytes())
}

func TestStage_ValidImage(t *testing.T) {
	s := NewSession()

	err := s.Stage(pngPayload(64), testMaxBytes)
	require.NoError(t, err)

	require.Equal(t, StatusStaged, s.Status())
	require.Equal(t, "image/png", s.MediaType())

	ref, ok := s.CurrentImage()
	require.True(t, ok)
	require.Contains(t, ref, "sha256:")
}

func TestStage_RejectsNonImage(t *testing.T) {
	s := NewSession()

	err := s.Stage([]byte("plain text, definitely not an image"), testMaxBytes)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidMediaType))
	require.Equal(t, StatusEmpty, s.Status())
}

func TestStage_RejectsOversized(t *testing.T) {
	s := NewSession()

	err := s.Stage(pngPayload(128), 64)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrMediaTooLarge))
	require.Equal(t, StatusEmpty, s.Status())
}

func TestStage_RejectsEmptyPayload(t *testing.T) {
	s := NewSession()

	err := s.Stage(nil, testMaxBytes)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrValidation))
}

func TestStage_ReplacesPreviousImage(t *testing.T) {
	s := NewSession()

	first := pngPayload(10)
	second := pngPayload(20)

	require.NoError(t, s.Stage(first, testMaxBytes))
	firstRef, _ := s.CurrentImage()
	firstGen := s.Generation()

	require.NoError(t, s.Stage(second, testMaxBytes))
	secondRef, _ := s.CurrentImage()

	// Exactly the last staged image is resident
	require.NotEqual(t, firstRef, secondRef)
	require.Equal(t, second, s.ImageBytes())
	require.Greater(t, s.Generation(), firstGen)
}

func TestMarkSubmitted(t *testing.T) {
	s := NewSession()

	// Not legal when empty
	err := s.MarkSubmitted()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))

	require.NoError(t, s.Stage(pngPayload(8), testMaxBytes))
	require.NoError(t, s.MarkSubmitted())
	require.Equal(t, StatusSubmitted, s.Status())

	// Double submit is illegal
	err = s.MarkSubmitted()
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
}

func TestDiscard(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Stage(pngPayload(8), testMaxBytes))
	gen := s.Generation()

	s.Discard()

	require.Equal(t, StatusEmpty, s.Status())
	require.Nil(t, s.ImageBytes())
	_, ok := s.CurrentImage()
	require.False(t, ok)
	// Discard advances the generation so in-flight results go stale
	require.Greater(t, s.Generation(), gen)

	// Discard from empty is still valid
	s.Discard()
	require.Equal(t, StatusEmpty, s.Status())
}
