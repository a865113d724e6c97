package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"voxelview/internal/models"
	"voxelview/pkg/adaptor"
	"voxelview/pkg/config"
	"voxelview/pkg/metrics"
	"voxelview/pkg/resample"
	"voxelview/pkg/transform"
	"voxelview/pkg/visualization"
	"voxelview/pkg/voxel"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing 2D slice images (JPEG or PNG)")
	configPath := flag.String("config", "voxelview.yaml", "Path to YAML configuration file")
	writeConfig := flag.Bool("write-default-config", false, "Write the default configuration to -config and exit")
	outputDir := flag.String("output", "voxelview_output", "Directory for rendered slice previews")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Step 1: Load the slice stack and assemble it into a volume.
	if cfg.Output.Verbose {
		fmt.Println("Step 1: Loading input slices...")
	}
	slices, err := models.LoadSlices(*inputDir, cfg.Volume.SliceGap)
	if err != nil {
		log.Fatalf("Failed to load slices: %v", err)
	}
	volume, err := models.AssembleVolume(slices, cfg.Volume.SliceGap)
	if err != nil {
		log.Fatalf("Failed to assemble volume: %v", err)
	}
	if cfg.Output.Verbose {
		region := volume.BufferedRegion()
		fmt.Printf("Assembled %d slices into a %v volume\n", len(slices), region)
	}

	// Step 2: Bind the accessor view over the volume. No pixel data is
	// copied; the view reinterprets values on every read.
	if cfg.Output.Verbose {
		fmt.Printf("Step 2: Binding %s accessor view...\n", cfg.Accessor.Kind)
	}
	view := adaptor.NewView[float64, float64](volume, buildAccessor(cfg))

	// Step 3: Compare the raw volume against the adapted view.
	if cfg.Output.Verbose {
		fmt.Println("Step 3: Computing raw-vs-adapted metrics...")
	}
	report, err := metrics.Compare(volume, view, volume.BufferedRegion())
	if err != nil {
		log.Fatalf("Failed to compute metrics: %v", err)
	}
	fmt.Printf("\nRaw vs adapted volume:\n")
	fmt.Printf("======================\n")
	fmt.Printf("RMSE: %.6f\n", report.RMSE)
	fmt.Printf("Mean absolute error: %.6f\n", report.MAE)
	fmt.Printf("Pearson correlation: %.4f\n", report.Correlation)
	fmt.Printf("SSIM: %.4f\n", report.SSIM)
	fmt.Printf("Entropy difference: %.4f\n", report.EntropyDiff)

	// Step 4: Optionally resample the adapted view through a translation.
	var preview voxel.Source[float64] = view
	if cfg.Resample.Enabled {
		if cfg.Output.Verbose {
			fmt.Printf("Step 4: Resampling through translation %v...\n", cfg.Resample.Offset)
		}
		t, err := transform.NewTranslation(cfg.Resample.Offset)
		if err != nil {
			log.Fatalf("Invalid resample offset: %v", err)
		}
		interp := resample.Nearest
		if cfg.Resample.Interpolation == "linear" {
			interp = resample.Linear
		}
		resampled, err := resample.Through(view, t, view.LargestPossibleRegion(), resample.Params{
			Interpolation: interp,
			DefaultValue:  cfg.Resample.DefaultValue,
			NumWorkers:    cfg.Resample.NumWorkers,
		})
		if err != nil {
			log.Fatalf("Resampling failed: %v", err)
		}
		preview = resampled
	}

	// Step 5: Render slice previews of the result.
	if cfg.Output.SaveSlices {
		if cfg.Output.Verbose {
			fmt.Println("Step 5: Saving slice previews...")
		}
		viewer, err := visualization.NewViewer(preview)
		if err != nil {
			log.Fatalf("Failed to create viewer: %v", err)
		}
		viewer.Colormap = cfg.Output.Colormap
		viewer.Scale = cfg.Output.PreviewScale
		viewer.Label = true

		slicesPath := filepath.Join(*outputDir, cfg.Output.SlicesDir)
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(slicesPath, axis)
			if cfg.Output.Verbose {
				fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)
			}
			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}
	}

	fmt.Println("\nDone.")
}

// buildAccessor maps the configured accessor kind onto a strategy instance.
func buildAccessor(cfg *config.Config) adaptor.Accessor[float64, float64] {
	switch cfg.Accessor.Kind {
	case "linear":
		return adaptor.Linear[float64, float64]{Gain: cfg.Accessor.Gain, Bias: cfg.Accessor.Bias}
	case "identity":
		return adaptor.Identity[float64, float64]{}
	default:
		return adaptor.Acos[float64, float64]{Clamp: cfg.Accessor.ClampDomain}
	}
}
