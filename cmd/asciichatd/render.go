package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zfogg/ascii-chat-sub008/internal/asciiframe"
	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/config"
	"github.com/zfogg/ascii-chat-sub008/internal/render"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// renderCommand demonstrates the ASCII rendering core (§4.3-§4.6) in
// isolation: it reads a raw RGB pixel buffer (from stdin, or a
// synthetic horizontal gradient when --stdin is absent) and writes the
// rendered ANSI-art text to stdout.
func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render a raw RGB frame to ANSI-art text",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 64, Usage: "frame width in pixels"},
			&cli.IntFlag{Name: "height", Value: 32, Usage: "frame height in pixels"},
			&cli.StringFlag{Name: "palette", Value: config.DefaultConfig().Palette, Usage: "glyph palette, darkest first"},
			&cli.StringFlag{Name: "mode", Value: config.DefaultConfig().RenderModeName, Usage: "mono, 256fg, 256bg, truefg, truebg"},
			&cli.BoolFlag{Name: "vector", Usage: "use the SIMD-dispatched vector renderer instead of the scalar reference"},
			&cli.BoolFlag{Name: "stdin", Usage: "read width*height*3 raw RGB bytes from stdin instead of generating a test pattern"},
			&cli.BoolFlag{Name: "envelope", Usage: "wrap the rendered bytes in the AsciiFrame wire payload (§3) instead of writing raw ANSI"},
			&cli.BoolFlag{Name: "compress", Usage: "zstd-compress the AsciiFrame payload (only meaningful with --envelope)"},
		},
		Action: func(c *cli.Context) error {
			width := c.Int("width")
			height := c.Int("height")
			mode, err := parseRenderMode(c.String("mode"))
			if err != nil {
				return err
			}

			var pixels []byte
			if c.Bool("stdin") {
				pixels = make([]byte, width*height*3)
				if _, err := io.ReadFull(os.Stdin, pixels); err != nil {
					return fmt.Errorf("render: read stdin: %w", err)
				}
			} else {
				pixels = gradientFrame(width, height)
			}

			frame := &rendermode.Frame{Width: width, Height: height, Pixels: pixels}

			renderFn := render.Scalar
			if c.Bool("vector") {
				renderFn = render.Vector
			}

			out, err := renderFn(cache.DefaultCache, frame, []byte(c.String("palette")), mode)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if c.Bool("envelope") {
				out = asciiframe.Encode(uint32(width), uint32(height), mode.Kind != rendermode.Monochrome, out, c.Bool("compress"))
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
}

// gradientFrame builds a deterministic horizontal-gradient test pattern
// so render can be exercised without external pixel data.
func gradientFrame(width, height int) []byte {
	pixels := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if width > 1 {
				v = uint8(x * 255 / (width - 1))
			}
			i := (y*width + x) * 3
			pixels[i], pixels[i+1], pixels[i+2] = v, v, v
		}
	}
	return pixels
}

func parseRenderMode(name string) (rendermode.Mode, error) {
	switch name {
	case "mono":
		return rendermode.Mode{Kind: rendermode.Monochrome}, nil
	case "256fg":
		return rendermode.Mode{Kind: rendermode.Color256, Target: rendermode.Foreground}, nil
	case "256bg":
		return rendermode.Mode{Kind: rendermode.Color256, Target: rendermode.Background}, nil
	case "truefg":
		return rendermode.Mode{Kind: rendermode.TrueColor, Target: rendermode.Foreground}, nil
	case "truebg":
		return rendermode.Mode{Kind: rendermode.TrueColor, Target: rendermode.Background}, nil
	default:
		return rendermode.Mode{}, fmt.Errorf("render: unknown mode %q", name)
	}
}
