package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-signage"
	"github.com/goliatone/go-signage/cmd/signage/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

const usage = `usage: signage <command> [flags]

commands:
  layout          print a layout graph as JSON or XLF
  migrate         migrate a legacy layout to the normalized graph
  process-images  resize, hash, and release pending library images
  xlf             parse an XLF document and print or save the graph`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("signage: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	ctx := context.Background()
	switch args[0] {
	case "layout":
		return runLayout(ctx, args[1:], out)
	case "migrate":
		return runMigrate(ctx, args[1:], out)
	case "process-images":
		return runProcessImages(ctx, args[1:], out)
	case "xlf":
		return runXLF(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func storageFlags(fs *flag.FlagSet, opts *bootstrap.Options) {
	fs.StringVar(&opts.Driver, "driver", "", "Storage driver (sqlite3 or postgres)")
	fs.StringVar(&opts.DSN, "dsn", "", "Storage DSN")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable debug logging")
	opts.Getenv = os.Getenv
}

func build(opts bootstrap.Options) (*signage.Module, error) {
	module, err := moduleBuilder(opts)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

func runLayout(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	opts := bootstrap.Options{}
	storageFlags(fs, &opts)
	id := fs.String("id", "", "Layout ID")
	format := fs.String("format", "json", "Output format (json or xlf)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layoutID, err := bootstrap.ParseUUID(*id)
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	module, err := build(opts)
	if err != nil {
		return err
	}
	defer module.Close()

	layout, err := module.LoadLayout(ctx, layoutID)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	return writeLayout(module, layout, *format, out)
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	opts := bootstrap.Options{}
	storageFlags(fs, &opts)
	id := fs.String("id", "", "Layout ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layoutID, err := bootstrap.ParseUUID(*id)
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	module, err := build(opts)
	if err != nil {
		return err
	}
	defer module.Close()

	if err := module.MigrateLayout(ctx, layoutID); err != nil {
		return fmt.Errorf("execute migrate command: %w", err)
	}
	fmt.Fprintf(out, "layout %s migrated\n", layoutID)
	return nil
}

func runProcessImages(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("process-images", flag.ContinueOnError)
	opts := bootstrap.Options{}
	storageFlags(fs, &opts)
	fs.StringVar(&opts.LibraryLocation, "library", "", "Library root (overrides "+bootstrap.EnvLibraryLocation+")")
	fs.IntVar(&opts.ResizeThreshold, "threshold", 0, "Resize threshold in pixels (overrides "+bootstrap.EnvDefaultResizeThreshold+")")
	maxFailures := fs.Int("max-failures", 0, "Fail when more items are skipped; 0 disables the limit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts.SummaryObserver = func(summary signage.ImageSummary) {
		fmt.Fprintf(out, "released %d, notified %d, skipped %d\n", summary.Released, summary.Notified, len(summary.Failures))
		for _, failure := range summary.Failures {
			fmt.Fprintf(out, "  %s\n", failure.Error())
		}
	}
	module, err := build(opts)
	if err != nil {
		return err
	}
	defer module.Close()

	if err := module.ProcessImages(ctx, signage.ProcessImagesCommand{MaxFailures: *maxFailures}); err != nil {
		return fmt.Errorf("execute process images command: %w", err)
	}
	return nil
}

func runXLF(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("xlf", flag.ContinueOnError)
	opts := bootstrap.Options{}
	storageFlags(fs, &opts)
	file := fs.String("file", "", "Path to the XLF document")
	name := fs.String("name", "", "Layout name used when saving")
	save := fs.Bool("save", false, "Persist the parsed layout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*file) == "" {
		return errors.New("file is required")
	}

	document, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	module, err := build(opts)
	if err != nil {
		return err
	}
	defer module.Close()

	layout, err := module.ParseXLF(document)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if *save {
		layout.Name = strings.TrimSpace(*name)
		if layout.Name == "" {
			return errors.New("name is required when saving")
		}
		if layout, err = module.Layouts().Save(ctx, layout); err != nil {
			return fmt.Errorf("save layout: %w", err)
		}
	}
	return writeLayout(module, layout, "json", out)
}

func writeLayout(module *signage.Module, layout *signage.Layout, format string, out io.Writer) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	case "xlf", "xml":
		document, err := module.EncodeXLF(layout)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		_, err = out.Write(document)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
