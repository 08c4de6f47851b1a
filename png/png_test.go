package png

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"
)

func TestSourceChannelsNoAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	src, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if src.Channels() != 3 {
		t.Errorf("Channels() = %d, want 3", src.Channels())
	}
	row, err := src.Row(0)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	want := []byte{10, 20, 30, 255, 10, 20, 30, 255}
	if !bytes.Equal(row, want) {
		t.Errorf("Row(0) = % x, want % x", row, want)
	}
}

func TestSourceChannelsWithAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 100})
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	src, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if src.Channels() != 4 {
		t.Errorf("Channels() = %d, want 4", src.Channels())
	}
}

func TestSinkRoundTrip3Channel(t *testing.T) {
	sink := NewSink(2, 1, 3)
	if err := sink.Row(0, []byte{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("Row: %v", err)
	}
	data, err := sink.EncodeToBytes()
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}

	src, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if src.Channels() != 3 {
		t.Errorf("round-tripped Channels() = %d, want 3 (opaque alpha should select no-alpha color type)", src.Channels())
	}
	row, err := src.Row(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 255, 4, 5, 6, 255}
	if !bytes.Equal(row, want) {
		t.Errorf("Row(0) = % x, want % x", row, want)
	}
}

func TestSinkRoundTrip4Channel(t *testing.T) {
	sink := NewSink(1, 1, 4)
	if err := sink.Row(0, []byte{9, 8, 7, 100}); err != nil {
		t.Fatalf("Row: %v", err)
	}
	data, err := sink.EncodeToBytes()
	if err != nil {
		t.Fatal(err)
	}
	src, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if src.Channels() != 4 {
		t.Errorf("Channels() = %d, want 4", src.Channels())
	}
	row, err := src.Row(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{9, 8, 7, 100}
	if !bytes.Equal(row, want) {
		t.Errorf("Row(0) = % x, want % x", row, want)
	}
}

func TestRowOutOfRange(t *testing.T) {
	sink := NewSink(1, 1, 3)
	sink.Row(0, []byte{0, 0, 0})
	data, _ := sink.EncodeToBytes()
	src, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Row(5); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestSinkRejectsWrongRowLength(t *testing.T) {
	sink := NewSink(2, 1, 3)
	if err := sink.Row(0, []byte{1, 2, 3}); err == nil {
		t.Error("expected an error for a short row")
	}
}
