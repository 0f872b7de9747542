package sim

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/voxel-light/internal/world"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

var (
	bright = color.New(color.FgHiYellow, color.Bold)
	lit    = color.New(color.FgYellow)
	dim    = color.New(color.FgBlue)
	dark   = color.New(color.FgHiBlack)
)

func shade(v light.Value) *color.Color {
	switch lv := max(v.Block(), v.Sky()); {
	case lv >= 12:
		return bright
	case lv >= 6:
		return lit
	case lv > 0:
		return dim
	default:
		return dark
	}
}

// PrintSlice writes the packed light of the horizontal plane y over area,
// one row per Z and two hex digits (sky, block) per voxel. Unset voxels
// print as "..".
func PrintSlice(out io.Writer, w *world.World, area Area, y int) {
	minX, maxX := area.MinX*16, area.MaxX*16+15
	minZ, maxZ := area.MinZ*16, area.MaxZ*16+15

	fmt.Fprintf(out, "y=%d x=[%d,%d] z=[%d,%d]\n", y, minX, maxX, minZ, maxZ)
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			if x > minX {
				fmt.Fprint(out, " ")
			}
			v, ok := w.Light(world.BlockPos{X: x, Y: y, Z: z})
			if !ok {
				dark.Fprint(out, "..")
				continue
			}
			shade(v).Fprintf(out, "%02X", uint8(v))
		}
		fmt.Fprintln(out)
	}
}

// PrintResult writes a one-line summary of res followed by failed probes.
func PrintResult(out io.Writer, res *Result) {
	status := color.New(color.FgGreen).Sprint("ok")
	if res.Failed() > 0 {
		status = color.New(color.FgRed).Sprintf("FAIL (%d)", res.Failed())
	}
	fmt.Fprintf(out, "%s: %s chunks=%d changes=%d updates=%d probes=%d\n",
		res.Name, status, res.Chunks, res.Changes, res.Updates, len(res.Probes))
	for _, p := range res.Probes {
		if p.OK() {
			continue
		}
		if p.Unset {
			fmt.Fprintf(out, "  probe %v: unset\n", p.Probe.Pos())
			continue
		}
		fmt.Fprintf(out, "  probe %v: got block=%d sky=%d", p.Probe.Pos(), p.Got.Block(), p.Got.Sky())
		if p.Probe.Block != nil {
			fmt.Fprintf(out, " want block=%d", *p.Probe.Block)
		}
		if p.Probe.Sky != nil {
			fmt.Fprintf(out, " want sky=%d", *p.Probe.Sky)
		}
		fmt.Fprintln(out)
	}
	for _, pos := range res.Mismatch {
		fmt.Fprintf(out, "  chunk %v: light differs after recompute\n", pos)
	}
	for _, pos := range res.Drift {
		fmt.Fprintf(out, "  chunk %v: light differs from baseline\n", pos)
	}
}
