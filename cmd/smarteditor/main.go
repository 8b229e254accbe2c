package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codynego/smarteditor/internal/config"
	"github.com/codynego/smarteditor/internal/logging"
	"github.com/codynego/smarteditor/internal/pipeline"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "smarteditor",
	Short: "Adjust, crop and annotate photos",
	Long: `smarteditor applies the smart photo editor's adjustments to images:
brightness, contrast, colour and tone sliders, creative presets, rotation,
flips, crop, text and vignette.`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Edit a single image",
	Long:  `Edit a single image, a local file or an http(s) URL, and write the result.`,
	RunE:  runRender,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Edit every image in a directory",
	Long:  `Apply the same edit to every image in a directory.`,
	RunE:  runBatch,
}

var (
	configPath string
	verbose    bool
	cfg        *config.Config

	inputPath  string
	outputPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	renderCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input image file or URL (required)")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output image file (required)")
	registerEditFlags(renderCmd.Flags())
	renderCmd.MarkFlagRequired("input")
	renderCmd.MarkFlagRequired("output")

	batchCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input directory (required)")
	batchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output directory (required)")
	registerEditFlags(batchCmd.Flags())
	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(slidersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.Set(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd.Flags())
	if err != nil {
		return err
	}

	start := time.Now()
	fmt.Printf("Processing: %s\n", inputPath)

	if err := pipeline.Process(inputPath, outputPath, opts); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	if err := saveRecipe(cmd.Flags(), opts); err != nil {
		return err
	}

	fmt.Printf("Done: %s (%dms)\n", outputPath, time.Since(start).Milliseconds())
	return nil
}

var batchExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true, ".gif": true,
}

// batchOutputName keeps JPEG and PNG extensions and writes everything else
// as JPEG.
func batchOutputName(name, suffix string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	out := strings.ToLower(ext)
	if out != ".jpg" && out != ".jpeg" && out != ".png" {
		out = ".jpg"
	}
	return fmt.Sprintf("%s_%s%s", base, suffix, out)
}

func runBatch(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd.Flags())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := os.ReadDir(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}

	suffix := "edited"
	if opts.State.Preset != "" && opts.State.Preset != "none" {
		suffix = string(opts.State.Preset)
	}

	processed, failed := 0, 0
	for _, f := range files {
		if f.IsDir() || !batchExts[strings.ToLower(filepath.Ext(f.Name()))] {
			continue
		}

		inPath := filepath.Join(inputPath, f.Name())
		outPath := filepath.Join(outputPath, batchOutputName(f.Name(), suffix))

		start := time.Now()
		fmt.Printf("[%d] Processing: %s ", processed+failed+1, f.Name())

		if err := pipeline.Process(inPath, outPath, opts); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}

		fmt.Printf("(%dms)\n", time.Since(start).Milliseconds())
		processed++
	}

	fmt.Printf("\nBatch complete: %d images processed, %d failed\n", processed, failed)
	return saveRecipe(cmd.Flags(), opts)
}
