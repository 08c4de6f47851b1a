// Package png adapts the standard library's image and image/png packages
// to the row-at-a-time producer/consumer contract the RPK codec expects
// (§6): a producer that always yields RGBA8 rows regardless of the PNG's
// declared channel count, and a consumer whose output color type follows
// the channel count being written.
package png

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stdpng "image/png"
	"io"

	"github.com/deepteams/rpk/internal/bufpool"
)

// Source wraps a decoded PNG image and exposes it as RGBA8 rows.
type Source struct {
	img      image.Image
	width    int
	height   int
	channels int
}

// Decode reads a PNG image from r.
func Decode(r io.Reader) (*Source, error) {
	img, err := stdpng.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("png: decoding: %w", err)
	}
	b := img.Bounds()
	return &Source{
		img:      img,
		width:    b.Dx(),
		height:   b.Dy(),
		channels: channelsOf(img),
	}, nil
}

// channelsOf reports the channel count implied by the decoded image's
// concrete type, which the standard decoder chooses from the PNG's IHDR
// color type: *image.RGBA and *image.Gray for color types without alpha,
// *image.NRGBA (and paletted images with a transparent entry) for color
// types with alpha.
func channelsOf(img image.Image) int {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA64:
		return 4
	case *image.RGBA:
		return 3
	case *image.Gray, *image.Gray16:
		return 3
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	default:
		return 4
	}
}

// Width returns the image width in pixels.
func (s *Source) Width() int { return s.width }

// Height returns the image height in pixels.
func (s *Source) Height() int { return s.height }

// Channels returns the channel count implied by the source PNG (3 or 4).
func (s *Source) Channels() int { return s.channels }

// Row returns row y as width*4 RGBA8 bytes, regardless of Channels(). The
// returned slice is drawn from the shared row buffer pool (internal/bufpool)
// since a full image decode calls Row once per scanline; callers that drive
// many rows in sequence should pass it to Release once done rather than let
// it escape to the garbage collector.
//
// Pixels are converted through color.NRGBAModel rather than the image's own
// At(...).RGBA(), which returns alpha-premultiplied components: a
// translucent pixel read that way and written back out byte-for-byte would
// not reproduce the original non-premultiplied values the PNG declared.
func (s *Source) Row(y int) ([]byte, error) {
	if y < 0 || y >= s.height {
		return nil, fmt.Errorf("png: row %d out of range [0,%d)", y, s.height)
	}
	b := s.img.Bounds()
	row := bufpool.Get(s.width * 4)
	for x := 0; x < s.width; x++ {
		c := color.NRGBAModel.Convert(s.img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
		i := x * 4
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
	return row, nil
}

// Release returns a row buffer obtained from Row to the shared pool. It is
// safe to skip; it only avoids a reallocation on a future Get of the same
// size class.
func (s *Source) Release(row []byte) {
	bufpool.Put(row)
}

// Sink accumulates decoded RPK rows and encodes them as a PNG image.
// Rows are width*channels bytes each; channels selects whether the
// produced PNG declares an alpha channel (color_type 6) or not
// (color_type 2), per the IHDR color_type = 4*channels-10 mapping (§6).
type Sink struct {
	img      *image.NRGBA
	width    int
	height   int
	channels int
}

// NewSink allocates a Sink for a width x height image with the given
// channel count (3 or 4).
func NewSink(width, height, channels int) *Sink {
	return &Sink{
		img:      image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:    width,
		height:   height,
		channels: channels,
	}
}

// Row writes row y from data, which must be width*channels bytes. For a
// 3-channel sink, alpha is forced to 255 so the standard library's
// Opaque() check selects the no-alpha PNG color type on Encode.
func (s *Sink) Row(y int, data []byte) error {
	want := s.width * s.channels
	if len(data) != want {
		return fmt.Errorf("png: row %d has %d bytes, want %d", y, len(data), want)
	}
	for x := 0; x < s.width; x++ {
		i := x * s.channels
		var c color.NRGBA
		c.R, c.G, c.B = data[i], data[i+1], data[i+2]
		if s.channels == 4 {
			c.A = data[i+3]
		} else {
			c.A = 255
		}
		s.img.SetNRGBA(x, y, c)
	}
	return nil
}

// Encode writes the accumulated image as a PNG to w.
func (s *Sink) Encode(w io.Writer) error {
	if err := stdpng.Encode(w, s.img); err != nil {
		return fmt.Errorf("png: encoding: %w", err)
	}
	return nil
}

// EncodeToBytes is a convenience wrapper returning the encoded PNG bytes.
func (s *Sink) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
