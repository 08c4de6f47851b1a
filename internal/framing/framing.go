// Package framing defines constants and a sequential parser for the RPK
// container format: the 13-byte header and 8-byte footer that wrap an
// encoded pixel stream (§4.1 of the format). It mirrors the RIFF container
// parser's shape of a single-pass, error-on-short-input reader, but RPK's
// header is flat rather than chunked.
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the 3-byte signature that opens every RPK stream.
var Magic = [3]byte{'r', 'p', 'k'}

// Colorspace identifies the color model used when encoding the pixel stream.
// The codec never interprets it; it is stored verbatim in the header and
// opaque outside the framing layer (§3).
type Colorspace byte

const (
	ColorspaceSRGB   Colorspace = 0
	ColorspaceLinear Colorspace = 1
)

// Container structure sizes.
const (
	MagicSize     = 3
	HeaderSize    = 3 + 4 + 4 + 1 + 1 // magic + width + height + channels + colorspace
	FooterSize    = 8
	FooterPadding = 7
	Terminator    = 0x01
)

// Limits on declared dimensions. The wire format allows the full uint32
// range; these are sanity limits applied before any allocation is sized
// off the header so a corrupted header fails fast rather than exhausting
// memory.
const (
	MaxDimension = 1 << 16
	MaxPixels    = 1 << 28
)

// Common errors.
var (
	ErrBadMagic      = errors.New("rpk: bad magic")
	ErrBadChannels   = errors.New("rpk: channels must be 3 or 4")
	ErrBadDimensions = errors.New("rpk: invalid width or height")
	ErrTooLarge      = errors.New("rpk: image exceeds maximum pixel count")
	ErrTruncated     = errors.New("rpk: truncated data")
	ErrBadFooter     = errors.New("rpk: malformed footer")
)

// Header describes the fixed-size preamble of an RPK stream (§3, §4.1).
type Header struct {
	Width      int
	Height     int
	Channels   int
	Colorspace Colorspace
}

// Validate checks Header fields against the format's declared limits.
func (h Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return ErrBadDimensions
	}
	if h.Channels != 3 && h.Channels != 4 {
		return ErrBadChannels
	}
	if uint64(h.Width)*uint64(h.Height) > MaxPixels {
		return ErrTooLarge
	}
	return nil
}

// ReadHeader reads and validates the 13-byte RPK header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, classify(err, ErrTruncated)
	}

	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Width:      int(binary.BigEndian.Uint32(buf[3:7])),
		Height:     int(binary.BigEndian.Uint32(buf[7:11])),
		Channels:   int(buf[11]),
		Colorspace: Colorspace(buf[12]),
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// WriteHeader writes the 13-byte RPK header to w.
func WriteHeader(w io.Writer, h Header) error {
	if err := h.Validate(); err != nil {
		return err
	}
	var buf [HeaderSize]byte
	buf[0], buf[1], buf[2] = Magic[0], Magic[1], Magic[2]
	binary.BigEndian.PutUint32(buf[3:7], uint32(h.Width))
	binary.BigEndian.PutUint32(buf[7:11], uint32(h.Height))
	buf[11] = byte(h.Channels)
	buf[12] = byte(h.Colorspace)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("rpk: writing header: %w", err)
	}
	return nil
}

// WriteFooterPadding writes the seven zero bytes that precede the
// terminator in the 8-byte footer (§4.1). The terminator byte itself is
// written separately, after the pixel stream's own final flush: callers
// flush the codec, write the padding, then write the single terminator
// byte as the true last byte of the stream.
func WriteFooterPadding(w io.Writer) error {
	var buf [FooterPadding]byte
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("rpk: writing footer: %w", err)
	}
	return nil
}

// ReadFooterPadding reads and validates the seven zero bytes that precede
// the terminator. Callers read ReadFooterPadding only after the decoder
// has produced the declared pixel count, then read and validate the
// single terminator byte themselves.
func ReadFooterPadding(r io.Reader) error {
	var buf [FooterPadding]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return classify(err, ErrTruncated)
	}
	for _, b := range buf {
		if b != 0 {
			return ErrBadFooter
		}
	}
	return nil
}

func classify(err, sentinel error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return sentinel
	}
	return fmt.Errorf("rpk: %w", err)
}
