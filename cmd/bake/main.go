package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"devstabilize/internal/batch"
	"devstabilize/internal/config"
	"devstabilize/internal/preview"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	sceneFile := flag.String("scene", "", "Scene file to retarget")
	output := flag.String("output", "", "Output scene file (default: <scene>.baked.yaml)")
	jobsFile := flag.String("jobs", "", "YAML job list for batch mode")
	source := flag.String("source", "", "Source entity (e.g. the tracked camera)")
	dest := flag.String("dest", "", "Destination entity that receives the motion")
	start := flag.Int("start", 0, "First frame (default: scene playback start)")
	end := flag.Int("end", 0, "Last frame, inclusive (default: scene playback end)")
	rotation := flag.Bool("rotation", false, "Transfer rotation")
	scale := flag.Bool("scale", false, "Transfer scale")
	reassembly := flag.String("reassembly", "", "Rotation reassembly: clean or legacy (default: clean)")
	tangent := flag.String("tangent", "", "Tangent for baked keys: linear, step or flat (default: linear)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	doPreview := flag.Bool("preview", false, "Render a trajectory preview per job")
	previewDir := flag.String("preview-dir", "", "Preview output directory (implies -preview)")
	plate := flag.String("plate", "", "Background plate for previews (TGA, PNG or JPEG)")
	view := flag.String("view", "", "Preview view: top, front or side (default: top)")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	size := flag.Int("size", 0, "Preview size in pixels (default: 512)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		Scene:      *sceneFile,
		Output:     *output,
		Jobs:       *jobsFile,
		Source:     *source,
		Dest:       *dest,
		Rotation:   *rotation,
		Scale:      *scale,
		Reassembly: *reassembly,
		Tangent:    *tangent,
		Workers:    *workers,
		Preview:    *doPreview,
		PreviewDir: *previewDir,
		Plate:      *plate,
		View:       *view,
		Format:     *format,
		Size:       *size,
	}
	// -start/-end only override when given, since frame 0 is a valid frame
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start":
			flags.Start = start
		case "end":
			flags.End = end
		}
	})

	// CLI flags override config file
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// Build jobs
	var jobs []batch.Job
	if cfg.Jobs != "" {
		var err error
		jobs, err = batch.LoadJobs(cfg.Jobs, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading job list: %v\n", err)
			os.Exit(1)
		}
	} else {
		jobs = []batch.Job{batch.FromConfig(cfg)}
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs to run.")
		os.Exit(0)
	}

	batchCfg := batch.Config{
		Workers:    cfg.Workers,
		Preview:    cfg.Preview.Enabled,
		PreviewDir: cfg.Preview.Dir,
	}
	if cfg.Preview.Enabled {
		opts, f, err := previewOptions(cfg.Preview)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		batchCfg.PreviewOpts, batchCfg.PreviewFormat = opts, f
	}

	// Print summary
	mode := ""
	if cfg.Jobs != "" {
		mode = fmt.Sprintf(" (batch: %s)", cfg.Jobs)
	}
	fmt.Printf("Transform retarget bake%s\n", mode)
	fmt.Printf("Jobs: %d, Workers: %d, Reassembly: %s\n", len(jobs), cfg.Workers, cfg.Reassembly)
	if cfg.Preview.Enabled {
		fmt.Printf("Previews: %s (%s, %dpx, %s view)\n", cfg.Preview.Dir, cfg.Preview.Format, cfg.Preview.Size, cfg.Preview.View)
	}
	fmt.Println("------------------------------------------------------------")

	began := time.Now()
	results := batch.Run(batchCfg, jobs)
	elapsed := time.Since(began)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	sum := batch.Summarize(results)
	for _, r := range results {
		if r.Success {
			fmt.Printf("  %s: frames %d-%d -> %s\n", r.Name, r.Start, r.End, r.Output)
		}
	}
	fmt.Printf("Baked: %d/%d jobs, %d frames\n", sum.Succeeded, sum.Total, sum.Frames)

	if sum.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", sum.Failed)
		for _, r := range results {
			if !r.Success {
				fmt.Printf("  %s: %s\n", r.Name, r.Error)
			}
		}
	}

	// Write manifest
	if cfg.Jobs != "" {
		manifestPath := filepath.Join(filepath.Dir(cfg.Jobs), "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func previewOptions(p config.Preview) (preview.Options, preview.Format, error) {
	view, err := preview.ParseView(p.View)
	if err != nil {
		return preview.Options{}, "", err
	}
	f, err := preview.ParseFormat(p.Format)
	if err != nil {
		return preview.Options{}, "", err
	}
	opts := preview.Options{Size: p.Size, Supersample: p.Supersample, View: view}
	if p.Plate != "" {
		opts.Plate, err = preview.LoadPlate(p.Plate)
		if err != nil {
			return preview.Options{}, "", err
		}
	}
	return opts, f, nil
}
