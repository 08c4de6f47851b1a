package codec

import (
	"errors"
	"io"
)

// Decoder is the RPK decoder state machine (§4.4). Each call to Pixel
// produces the next pixel in raster order, reading opcodes from an
// underlying io.Reader strictly as needed: no byte is read unless the
// current opcode requires it.
type Decoder struct {
	r        io.Reader
	channels int
	cache    *cache
	current  Pixel

	runtype int // meaningless while run == 0
	run     int // remaining pixels in the current run
}

// NewDecoder returns a Decoder that reads channels-channel pixel streams
// (channels must be 3 or 4) from r.
func NewDecoder(r io.Reader, channels int) *Decoder {
	return &Decoder{
		r:        r,
		channels: channels,
		cache:    newCache(),
		current:  NewPrevPixel(),
	}
}

// Pixel decodes and returns the next pixel in raster order.
func (d *Decoder) Pixel() (Pixel, error) {
	if d.run == 0 {
		op, err := d.readByte()
		if err != nil {
			return Pixel{}, err
		}

		if op < 0x80 {
			d.current = d.cache.at(op)
			return d.current, nil
		}

		runtype := int(op>>5) & 3
		lengthLo := op & 0x1F

		if runtype == runRepeat {
			n := run0ExtraBytes(lengthLo)
			var extra []byte
			if n > 0 {
				extra = make([]byte, n)
				if err := d.readFull(extra); err != nil {
					return Pixel{}, err
				}
			}
			length, err := decodeRun0Length(lengthLo, extra)
			if err != nil {
				return Pixel{}, err
			}
			d.run = length
		} else {
			d.run = int(lengthLo) + 1
		}
		d.runtype = runtype
	}

	d.run--

	switch d.runtype {
	case runRepeat:
		// current unchanged; cache not updated (§3 invariant c).

	case runDelta2:
		b, err := d.readByte()
		if err != nil {
			return Pixel{}, err
		}
		dr := (b >> 6) & 3
		dg := (b >> 4) & 3
		db := (b >> 2) & 3
		da := b & 3
		d.current.R ^= dr
		d.current.G ^= dg
		d.current.B ^= db
		if d.channels == 4 {
			d.current.A ^= da
		}
		d.cache.set(d.current)

	case runDelta5:
		buf := make([]byte, 2)
		if err := d.readFull(buf); err != nil {
			return Pixel{}, err
		}
		dr := (buf[0] >> 3) & 0x1F
		dgHi := buf[0] & 0x07
		dgLo := (buf[1] >> 5) & 0x07
		dg := dgHi<<3 | dgLo
		db := buf[1] & 0x1F
		d.current.R ^= dr
		d.current.G ^= dg
		d.current.B ^= db
		d.cache.set(d.current)

	case runLiteral:
		buf := make([]byte, d.channels)
		if err := d.readFull(buf); err != nil {
			return Pixel{}, err
		}
		d.current.R = buf[0]
		d.current.G = buf[1]
		d.current.B = buf[2]
		if d.channels == 4 {
			d.current.A = buf[3]
		}
		d.cache.set(d.current)
	}

	return d.current, nil
}

func (d *Decoder) readByte() (byte, error) {
	var b [1]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) readFull(buf []byte) error {
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return &wrappedError{kind: ErrSourceFailure, cause: err}
	}
	return nil
}
