package codec

// Run type identifiers (§2, §4.2 GLOSSARY "Run type").
const (
	runRepeat  = 0 // literal repeat of previous pixel
	runDelta2  = 1 // 2-bit-per-component delta
	runDelta5  = 2 // 5/6/5-bit delta
	runLiteral = 3 // literal color
)

// maxRunPixels is the maximum length of a run-type 1/2/3 (§4.2: "Length
// field is length_lo + 1, giving 1..32").
const maxRunPixels = 32

// maxRun0Length is the largest representable run-0 length: 2^19 + 2^11 + 16
// (§4.2, §4.3, §8 P4).
const maxRun0Length = 526352

const (
	run0SmallMax  = 16     // lengths 1..16 encode with no extra bytes
	run0MediumMax = 2064   // lengths 17..2064 encode with 1 extra byte
	run0LargeMax  = 526352 // lengths 2065..526352 encode with 2 extra bytes
)

// opcodeByte packs a run opcode byte: bit 7 set (distinguishing it from the
// 0..127 INDEX opcode space), bits 6-5 the run type, bits 4-0 length_lo.
func opcodeByte(runtype int, lengthLo byte) byte {
	return 0x80 | byte(runtype)<<5 | (lengthLo & 0x1F)
}

// encodeRun0Length returns the (lengthLo, extra bytes) encoding of a run-0
// length per §4.2's three-tier scheme. length must be in [1, maxRun0Length].
func encodeRun0Length(length int) (lengthLo byte, extra []byte) {
	switch {
	case length <= run0SmallMax:
		return byte(length - 1), nil
	case length <= run0MediumMax:
		rem := length - (run0SmallMax + 1)
		lo := 16 | ((rem >> 8) & 7)
		return byte(lo), []byte{byte(rem & 0xFF)}
	default:
		rem := length - (run0MediumMax + 1)
		lo := 24 | ((rem >> 16) & 7)
		return byte(lo), []byte{byte((rem >> 8) & 0xFF), byte(rem & 0xFF)}
	}
}

// run0ExtraBytes returns how many extra bytes follow a run-0 opcode whose
// length_lo field is lengthLo, per the "top = length_lo >> 3" rule (§9).
func run0ExtraBytes(lengthLo byte) int {
	switch lengthLo >> 3 {
	case 2:
		return 1
	case 3:
		return 2
	default:
		return 0
	}
}

// decodeRun0Length reconstructs a run-0 length from its length_lo field and
// up to two extra bytes (as returned by run0ExtraBytes). extra must have
// exactly run0ExtraBytes(lengthLo) elements.
func decodeRun0Length(lengthLo byte, extra []byte) (int, error) {
	switch lengthLo >> 3 {
	case 0, 1:
		return int(lengthLo) + 1, nil
	case 2:
		rem := int(lengthLo&7)<<8 | int(extra[0])
		return rem + run0SmallMax + 1, nil
	default: // 3
		rem := int(lengthLo&7)<<16 | int(extra[0])<<8 | int(extra[1])
		length := rem + run0MediumMax + 1
		if length > maxRun0Length {
			return 0, ErrOversizeRun
		}
		return length, nil
	}
}
