package chart

import "errors"

// ErrInvalidDPI is returned when a renderer is asked for a non-positive resolution.
var ErrInvalidDPI = errors.New("dpi must be positive")

// ErrUnexpectedPNG is returned when the encoded image does not start with
// an IHDR chunk.
var ErrUnexpectedPNG = errors.New("encoded PNG does not start with IHDR")
