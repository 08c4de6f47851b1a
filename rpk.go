package rpk

import (
	"errors"
	"fmt"
	"io"

	"github.com/deepteams/rpk/internal/codec"
	"github.com/deepteams/rpk/internal/framing"
	"github.com/deepteams/rpk/png"
)

// Re-exported error kinds (§7). Callers should match these with errors.Is
// rather than relying on message text.
var (
	ErrBadMagic      = errors.New("rpk: bad magic")
	ErrBadChannels   = errors.New("rpk: channels must be 3 or 4")
	ErrBadDimensions = errors.New("rpk: invalid width or height")
	ErrTooLarge      = errors.New("rpk: image exceeds maximum pixel count")
	ErrTruncated     = errors.New("rpk: truncated stream")
	ErrBadFooter     = errors.New("rpk: malformed footer")
	ErrOversizeRun   = errors.New("rpk: run-0 length exceeds maximum")
	ErrSinkFailure   = errors.New("rpk: sink failure")
	ErrSourceFailure = errors.New("rpk: source failure")
)

// translateErr maps the internal codec/framing sentinels to this
// package's exported ones. An error matching one of them is replaced by
// the bare exported sentinel, without its underlying cause; any other
// error is returned unchanged.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, framing.ErrBadMagic):
		return ErrBadMagic
	case errors.Is(err, framing.ErrBadChannels):
		return ErrBadChannels
	case errors.Is(err, framing.ErrBadDimensions):
		return ErrBadDimensions
	case errors.Is(err, framing.ErrTooLarge):
		return ErrTooLarge
	case errors.Is(err, framing.ErrTruncated), errors.Is(err, codec.ErrTruncated):
		return ErrTruncated
	case errors.Is(err, framing.ErrBadFooter):
		return ErrBadFooter
	case errors.Is(err, codec.ErrOversizeRun):
		return ErrOversizeRun
	case errors.Is(err, codec.ErrSinkFailure):
		return ErrSinkFailure
	case errors.Is(err, codec.ErrSourceFailure):
		return ErrSourceFailure
	default:
		return err
	}
}

// RowSource yields pixel rows for encoding. Each row is exactly
// width*4 RGBA8 bytes: producers always deliver RGBA8 regardless of the
// declared channel count, with alpha defaulted to 255 for 3-channel
// images (§6).
type RowSource interface {
	Row(y int) ([]byte, error)
}

// RowSink receives decoded pixel rows. Each row is width*channels bytes
// (§6).
type RowSink interface {
	Row(y int, data []byte) error
}

// Descriptor carries the file-level metadata read from or written to an
// RPK stream's header (§3).
type Descriptor struct {
	Width      int
	Height     int
	Channels   int
	Colorspace framing.Colorspace
}

// Encode writes width x height pixels read from src as a complete RPK
// stream to w: header, codec payload, and footer (§4.1).
func Encode(w io.Writer, src RowSource, width, height, channels int, colorspace framing.Colorspace) error {
	hdr := framing.Header{Width: width, Height: height, Channels: channels, Colorspace: colorspace}
	if err := framing.WriteHeader(w, hdr); err != nil {
		return translateErr(err)
	}

	enc := codec.NewEncoder(w, channels)
	releaser, _ := src.(interface{ Release([]byte) })
	for y := 0; y < height; y++ {
		row, err := src.Row(y)
		if err != nil {
			return fmt.Errorf("rpk: reading row %d: %w: %w", y, ErrSourceFailure, err)
		}
		if err := feedRow(enc, row, width, channels); err != nil {
			return translateErr(err)
		}
		if releaser != nil {
			releaser.Release(row)
		}
	}
	// §4.1: the final pending run is flushed first (it may still be
	// needed to represent the last pixels), then the framer's seven-zero
	// footer prefix, then the single terminator byte.
	if err := enc.Flush(); err != nil {
		return translateErr(err)
	}
	if err := framing.WriteFooterPadding(w); err != nil {
		return translateErr(err)
	}
	if _, err := w.Write([]byte{framing.Terminator}); err != nil {
		return fmt.Errorf("rpk: writing terminator: %w", err)
	}
	return nil
}

// feedRow pushes one RGBA8 row through enc, one pixel at a time.
func feedRow(enc *codec.Encoder, row []byte, width, channels int) error {
	for x := 0; x < width; x++ {
		i := x * 4
		p := codec.Pixel{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
		if channels == 3 {
			p.A = 255
		}
		if err := enc.Pixel(p); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a complete RPK stream from r, delivering each decoded row
// to sink as width*channels bytes, and returns the stream's descriptor.
func Decode(r io.Reader, sink RowSink) (Descriptor, error) {
	hdr, err := framing.ReadHeader(r)
	if err != nil {
		return Descriptor{}, translateErr(err)
	}
	return decodeBody(r, hdr, sink)
}

func decodeBody(r io.Reader, hdr framing.Header, sink RowSink) (Descriptor, error) {
	dec := codec.NewDecoder(r, hdr.Channels)
	row := make([]byte, hdr.Width*hdr.Channels)
	for y := 0; y < hdr.Height; y++ {
		for x := 0; x < hdr.Width; x++ {
			p, err := dec.Pixel()
			if err != nil {
				return Descriptor{}, translateErr(err)
			}
			i := x * hdr.Channels
			row[i+0], row[i+1], row[i+2] = p.R, p.G, p.B
			if hdr.Channels == 4 {
				row[i+3] = p.A
			}
		}
		if err := sink.Row(y, row); err != nil {
			return Descriptor{}, fmt.Errorf("rpk: writing row %d: %w: %w", y, ErrSinkFailure, err)
		}
	}
	if err := framing.ReadFooterPadding(r); err != nil {
		return Descriptor{}, translateErr(err)
	}
	var term [1]byte
	if _, err := io.ReadFull(r, term[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Descriptor{}, ErrTruncated
		}
		return Descriptor{}, fmt.Errorf("rpk: reading terminator: %w", err)
	}
	if term[0] != framing.Terminator {
		return Descriptor{}, ErrBadFooter
	}

	return Descriptor{
		Width:      hdr.Width,
		Height:     hdr.Height,
		Channels:   hdr.Channels,
		Colorspace: hdr.Colorspace,
	}, nil
}

// EncodeSource writes src as a complete RPK stream to w, reading its
// width, height and channel count directly from src rather than requiring
// the caller to supply them. This is the usual entry point for encoding
// a decoded PNG (png.Source already satisfies RowSource).
func EncodeSource(w io.Writer, src *png.Source, colorspace framing.Colorspace) error {
	return Encode(w, src, src.Width(), src.Height(), src.Channels(), colorspace)
}

// DecodeSink reads a complete RPK stream from r into a freshly allocated
// png.Sink sized from the stream's own header, returning both the sink
// and the stream's descriptor. Callers encode the result with Sink.Encode
// or Sink.EncodeToBytes.
func DecodeSink(r io.Reader) (Descriptor, *png.Sink, error) {
	hdr, err := framing.ReadHeader(r)
	if err != nil {
		return Descriptor{}, nil, translateErr(err)
	}
	sink := png.NewSink(hdr.Width, hdr.Height, hdr.Channels)
	desc, err := decodeBody(r, hdr, sink)
	if err != nil {
		return Descriptor{}, nil, err
	}
	return desc, sink, nil
}
