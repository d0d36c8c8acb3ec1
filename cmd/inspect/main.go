package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/retarget"
	"devstabilize/internal/scene"
	"devstabilize/internal/trs"
)

// roundTripTolerance is the largest element drift between a world matrix and its
// recomposed TRS before the matrix is reported as sheared.
const roundTripTolerance = 1e-6

func main() {
	sceneFile := flag.String("scene", "", "Scene file")
	entity := flag.String("entity", "", "Entity to inspect (default: list entities)")
	against := flag.String("against", "", "Destination entity for a dry-run retarget of -entity")
	start := flag.Int("start", 0, "First frame (default: scene playback start)")
	end := flag.Int("end", 0, "Last frame (default: scene playback end)")
	rotation := flag.Bool("rotation", false, "Dry run: transfer rotation")
	scale := flag.Bool("scale", false, "Dry run: transfer scale")
	reassembly := flag.String("reassembly", "clean", "Dry run: rotation reassembly, clean or legacy")
	dump := flag.Bool("dump", false, "Dump full matrices and samples")
	flag.Parse()

	if *sceneFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -scene shot.yaml [-entity cam [-against world]]")
		os.Exit(1)
	}
	s, err := scene.Load(*sceneFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *entity == "" {
		fmt.Printf("%s: playback %d-%d, time %d, %d entities\n",
			s.Name, s.PlaybackStart, s.PlaybackEnd, s.CurrentTime(), len(s.Entities()))
		for _, id := range s.Entities() {
			e, _ := s.Entity(id)
			parent := "-"
			if e.Parent != "" {
				parent = e.Parent
			}
			fmt.Printf("  %-20s parent=%-12s keys t=%d r=%d s=%d locked=%s\n", id, parent,
				len(e.Translate.Keys), len(e.Rotate.Keys), len(e.Scale.Keys), e.Locked)
		}
		return
	}

	first, last := s.PlaybackStart, s.PlaybackEnd
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start":
			first = *start
		case "end":
			last = *end
		}
	})
	if first > last {
		fmt.Fprintf(os.Stderr, "start %d is after end %d\n", first, last)
		os.Exit(1)
	}

	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true

	mode, err := retarget.ParseReassembly(*reassembly)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flags := retarget.Flags{Rotation: *rotation, Scale: *scale}

	worlds, err := s.WorldMatrices(*entity, first, last)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var destWorlds []mathutil.Mat4
	if *against != "" {
		if destWorlds, err = s.WorldMatrices(*against, first, last); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	for i, w := range worlds {
		f := first + i
		world, err := trs.Decompose(w)
		switch {
		case err != nil:
			fmt.Printf("%4d: world %v\n", f, err)
		case !mathutil.ApproxEqual(trs.Compose(world), w, roundTripTolerance):
			fmt.Printf("%4d: world %s (sheared, not representable as TRS)\n", f, world)
		default:
			fmt.Printf("%4d: world %s\n", f, world)
		}

		if destWorlds == nil {
			if *dump {
				dumper.Dump(mathutil.List(w))
			}
			continue
		}

		dw := destWorlds[i]
		dest, src, err := retarget.ComputeFrame(w, dw, flags, mode)
		if err != nil {
			fmt.Printf("      retarget: %v\n", err)
			continue
		}
		fmt.Printf("      %s <- %s\n", *against, dest)
		fmt.Printf("      %s <- %s\n", *entity, src)
		if *dump {
			dumper.Dump(retarget.FrameSample{
				Frame: f, SourceWorld: w, DestWorld: dw, Dest: dest, Source: src, Channels: flags.Channels(),
			})
		}
	}
}
