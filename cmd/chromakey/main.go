// Command chromakey removes a key color from an image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gogpu/chromakey"
	_ "github.com/gogpu/chromakey/gpu" // hardware candidates
)

func main() {
	def := chromakey.DefaultConfig()
	var (
		input     = flag.String("in", "", "input image (png, jpeg, gif, bmp, tiff, webp)")
		output    = flag.String("out", "out.png", "output PNG file")
		keyColor  = flag.String("color", def.Color.Hex(), "key color as #rrggbb or #rgb")
		tolerance = flag.Float64("tolerance", def.Tolerance, "half-width of the tolerance cube, per channel in [0,1]")
		backends  = flag.String("backend", "", "comma-separated candidate devices to try, \"software\" for the CPU (default: hardware, in priority order)")
		dataURL   = flag.Bool("dataurl", false, "print the result as a data URL instead of writing -out")
		verbose   = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		chromakey.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := keyConfig(flag.CommandLine, *keyColor, *tolerance)
	if err != nil {
		log.Fatal(err)
	}
	opts := []chromakey.Option{chromakey.WithConfig(cfg)}
	if *backends != "" {
		opts = append(opts, chromakey.WithBackends(strings.Split(*backends, ",")...))
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	k, out, err := chromakey.NewWithSource(ctx, chromakey.DecodeAsync(f), opts...)
	if err != nil {
		log.Fatalf("Failed to key %s: %v", *input, err)
	}
	backend := k.Backend()
	_ = k.Close()

	if *dataURL {
		url, err := chromakey.DataURL(out)
		if err != nil {
			log.Fatalf("Failed to encode: %v", err)
		}
		fmt.Println(url)
		return
	}
	if err := chromakey.SavePNG(*output, out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Keyed %s -> %s (%dx%d, %s)\n", *input, *output, out.Bounds().Dx(), out.Bounds().Dy(), backend)
}

// keyConfig builds the keying configuration from the parsed flags. The
// -color default is shown as #rrggbb, which cannot hold the library's
// default key exactly, so the color is only parsed when the flag was set.
func keyConfig(fs *flag.FlagSet, color string, tolerance float64) (chromakey.Config, error) {
	cfg := chromakey.DefaultConfig()
	cfg.Tolerance = tolerance
	var err error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "color" {
			cfg.Color, err = chromakey.ParseColor(color)
		}
	})
	if err != nil {
		return chromakey.Config{}, err
	}
	return cfg, cfg.Validate()
}
