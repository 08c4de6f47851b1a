// Command rpk encodes and decodes RPK images from the command line.
//
// Usage:
//
//	rpk <input> <output>          PNG → RPK or RPK → PNG, dispatched by input suffix
//	rpk batch [options] <dir>     convert every .png/.rpk file in dir concurrently
//
// The suffix of the input path decides the direction: ".png" encodes to RPK,
// anything else decodes from RPK.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/rpk"
	"github.com/deepteams/rpk/internal/framing"
	"github.com/deepteams/rpk/png"
	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "batch":
		err = runBatch(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		err = runConvert(os.Args[1:])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rpk: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  rpk <input> <output>          Encode PNG to RPK, or decode RPK to PNG
  rpk batch [options] <dir>     Convert every .png/.rpk file in a directory

The direction is chosen from the input's suffix: ".png" encodes, anything
else decodes.

Run "rpk batch -h" for batch-specific options.
`)
}

// runConvert implements the two-positional-argument form (§6): encode when
// the input ends in ".png", decode otherwise.
func runConvert(args []string) error {
	if len(args) < 2 {
		printUsage()
		return fmt.Errorf("missing input and/or output path")
	}
	inputPath, outputPath := args[0], args[1]

	if strings.ToLower(filepath.Ext(inputPath)) == ".png" {
		return encodeFile(inputPath, outputPath)
	}
	return decodeFile(inputPath, outputPath)
}

func encodeFile(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	src, err := png.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := rpk.EncodeSource(out, src, framing.ColorspaceSRGB); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("encode: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fi, _ := os.Stat(outputPath)
	fmt.Fprintf(os.Stderr, "Encoded %s → %s (%d bytes)\n", inputPath, outputPath, fi.Size())
	return nil
}

func decodeFile(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	desc, sink, err := rpk.DecodeSink(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := sink.Encode(out); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("decode: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s → %s (%dx%d, %d channels)\n", inputPath, outputPath, desc.Width, desc.Height, desc.Channels)
	return nil
}

// --- batch ---

// runBatch converts every .png and .rpk file directly inside dir, one
// goroutine per file, using errgroup to collect the first error. Each file
// gets its own independent Encoder/Decoder (§5: no state is shared across
// images), so running them concurrently is safe even though a single
// image's encode or decode is strictly sequential.
func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	jobs := fs.Int("j", 0, "max concurrent conversions (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("batch: missing directory\nUsage: rpk batch [options] <dir>")
	}
	dir := fs.Arg(0)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	var g errgroup.Group
	if *jobs > 0 {
		g.SetLimit(*jobs)
	}

	converted := 0
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".png" && ext != ".rpk" {
			continue
		}
		converted++

		in := filepath.Join(dir, name)
		g.Go(func() error {
			base := strings.TrimSuffix(in, filepath.Ext(in))
			if ext == ".png" {
				return encodeFile(in, base+".rpk")
			}
			return decodeFile(in, base+".png")
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Converted %d files in %s\n", converted, dir)
	return nil
}
