// Package rpk implements RPK, a lossless raster image codec.
//
// RPK transforms raw 8-bit RGB or RGBA pixel rows into a compact byte
// stream and back using a streaming encoder and decoder built around a
// 128-entry color cache, a four-mode run-length state machine, and
// variable-width run-length encoding. It has no lossy mode, no
// multi-frame support, and no color-space transforms: the colorspace
// byte in the file header is stored but otherwise opaque to the codec.
//
// The package exposes the row-at-a-time streaming API the codec is built
// on (RowSource, RowSink) plus convenience functions that wrap a
// complete RPK file around the sibling png package's Source and Sink.
//
// Basic usage for encoding a PNG to RPK:
//
//	src, _ := png.Decode(pngReader)
//	err := rpk.EncodeSource(rpkWriter, src, framing.ColorspaceSRGB)
//
// Basic usage for decoding RPK back to PNG:
//
//	desc, sink, err := rpk.DecodeSink(rpkReader)
//	err = sink.Encode(pngWriter)
package rpk
