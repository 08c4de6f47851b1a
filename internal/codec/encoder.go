package codec

import "io"

const (
	type1Mask uint32 = 0xFCFCFCFC // each component's top 6 bits must be zero
	type2Mask uint32 = 0xE0C0E0FF // R:5bit G:6bit B:5bit A:unchanged
)

func fitsType1(d uint32) bool { return d&type1Mask == 0 }
func fitsType2(d uint32) bool { return d&type2Mask == 0 }

// packType1 packs a 2-bit-per-component delta into one byte: [dr:2][dg:2][db:2][da:2].
func packType1(d uint32) byte {
	dr, dg, db, da := unpackDelta(d)
	return (dr&3)<<6 | (dg&3)<<4 | (db&3)<<2 | (da & 3)
}

// packType2 packs a 5/6/5-bit delta into two bytes:
// [dr:5 | dg_hi:3] [dg_lo:3 | db:5].
func packType2(d uint32) (b0, b1 byte) {
	dr, dg, db, _ := unpackDelta(d)
	dr &= 0x1F
	db &= 0x1F
	b0 = dr<<3 | (dg >> 3 & 0x07)
	b1 = (dg&0x07)<<5 | db
	return b0, b1
}

// Encoder is the RPK encoder state machine (§4.3). It consumes pixels in
// raster order and writes opcodes to an underlying io.Writer as pending
// runs are flushed.
type Encoder struct {
	w        io.Writer
	channels int
	cache    *cache
	prev     Pixel

	runtype int // -1 == no pending run
	run     int
	arg     [maxRunPixels * 4]byte
	arglen  int
}

// NewEncoder returns an Encoder that writes channels-channel pixel streams
// (channels must be 3 or 4) to w.
func NewEncoder(w io.Writer, channels int) *Encoder {
	return &Encoder{
		w:        w,
		channels: channels,
		cache:    newCache(),
		prev:     NewPrevPixel(),
		runtype:  -1,
	}
}

// Pixel consumes the next pixel in raster order, advancing the encoder's
// state machine per §4.3. Mutually-exclusive operations are chosen in the
// authoritative tie-break order: identical -> type-1 continuation ->
// cache hit -> new type-1 -> type-2 -> type-3.
func (e *Encoder) Pixel(p Pixel) error {
	if p.Equal(e.prev) {
		if e.runtype == runRepeat && e.run < maxRun0Length {
			e.run++
		} else {
			if err := e.flush(); err != nil {
				return err
			}
			e.runtype = runRepeat
			e.run = 1
		}
		return nil
	}

	d := p.Delta(e.prev)

	if e.runtype == runDelta2 && e.run > 0 && e.run < maxRunPixels && fitsType1(d) {
		e.arg[e.arglen] = packType1(d)
		e.arglen++
		e.run++
		e.cache.set(p)
		e.prev = p
		return nil
	}

	if slot, hit := e.cache.lookup(p); hit {
		if err := e.flush(); err != nil {
			return err
		}
		if err := e.writeByte(slot); err != nil {
			return err
		}
		e.prev = p
		return nil
	}

	switch {
	case fitsType1(d) && e.runtype != runDelta5:
		if err := e.startRun(runDelta2); err != nil {
			return err
		}
		e.arg[e.arglen] = packType1(d)
		e.arglen++

	case fitsType2(d):
		if err := e.startRun(runDelta5); err != nil {
			return err
		}
		b0, b1 := packType2(d)
		e.arg[e.arglen] = b0
		e.arg[e.arglen+1] = b1
		e.arglen += 2

	default:
		if err := e.startRun(runLiteral); err != nil {
			return err
		}
		e.arg[e.arglen] = p.R
		e.arg[e.arglen+1] = p.G
		e.arg[e.arglen+2] = p.B
		n := 3
		if e.channels == 4 {
			e.arg[e.arglen+3] = p.A
			n = 4
		}
		e.arglen += n
	}

	e.run++
	e.cache.set(p)
	e.prev = p
	return nil
}

// startRun flushes any pending run that isn't of the given type (or that
// has already reached maxRunPixels), then begins a new pending run of that
// type with an empty argument buffer.
func (e *Encoder) startRun(runtype int) error {
	if e.run > 0 && (e.runtype != runtype || e.run == maxRunPixels) {
		if err := e.flush(); err != nil {
			return err
		}
	}
	e.runtype = runtype
	return nil
}

// flush emits the pending run's opcode and argument payload, then resets
// pending state. A no-op if there is no pending run.
func (e *Encoder) flush() error {
	if e.runtype == -1 || e.run == 0 {
		e.runtype = -1
		e.run = 0
		e.arglen = 0
		return nil
	}

	if e.runtype == runRepeat {
		lengthLo, extra := encodeRun0Length(e.run)
		if err := e.writeByte(opcodeByte(runRepeat, lengthLo)); err != nil {
			return err
		}
		if len(extra) > 0 {
			if err := e.writeBytes(extra); err != nil {
				return err
			}
		}
	} else {
		lengthLo := byte(e.run - 1)
		if err := e.writeByte(opcodeByte(e.runtype, lengthLo)); err != nil {
			return err
		}
		if err := e.writeBytes(e.arg[:e.arglen]); err != nil {
			return err
		}
	}

	e.runtype = -1
	e.run = 0
	e.arglen = 0
	return nil
}

// Flush performs the end-of-image final flush (§4.3 "End of image"):
// any still-pending run is emitted so the pixels it represents are fully
// decodable. It writes no terminator; callers driving a complete RPK
// file call Flush, then have the framing layer write the footer, whose
// own terminator byte is a framing-level write, not a codec one (§4.1).
// No further pixels may be submitted after Flush.
func (e *Encoder) Flush() error {
	return e.flush()
}

// Close is Flush followed directly by the footer terminator byte. It is
// a convenience for driving the bare codec stream (as in this package's
// own tests and the worked scenarios of §8, which show the terminator
// immediately following the payload with the footer's zero bytes
// elided) without a separate framing layer.
func (e *Encoder) Close() error {
	if err := e.flush(); err != nil {
		return err
	}
	return e.writeByte(0x01)
}

func (e *Encoder) writeByte(b byte) error {
	return e.writeBytes([]byte{b})
}

func (e *Encoder) writeBytes(b []byte) error {
	if _, err := e.w.Write(b); err != nil {
		return &wrappedError{kind: ErrSinkFailure, cause: err}
	}
	return nil
}
