package blurhash

import "errors"

var (
	// ErrInvalidComponentCount is returned when xComponents or yComponents
	// is outside [1, 9].
	ErrInvalidComponentCount = errors.New("blurhash: component count must be between 1 and 9")

	// ErrAllocationFailure is returned when an output buffer of the
	// requested size cannot be provided.
	ErrAllocationFailure = errors.New("blurhash: buffer allocation failed")

	// ErrMalformedHash is returned for a hash that is too short, whose length
	// disagrees with its size flag, or that contains a character outside the
	// base-83 alphabet.
	ErrMalformedHash = errors.New("blurhash: malformed hash")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("blurhash: width and height must be positive")

	// ErrInvalidChannels is returned when the channel count is not 3 or 4.
	ErrInvalidChannels = errors.New("blurhash: channels must be 3 or 4")

	// ErrBufferTooSmall is returned when a pixel buffer cannot hold the
	// described raster.
	ErrBufferTooSmall = errors.New("blurhash: pixel buffer too small")
)
