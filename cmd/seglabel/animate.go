package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/render"
	"github.com/urfave/cli/v2"
)

const (
	flagLayer = "layer"
	flagFPS   = "fps"
	flagWidth = "width"
	flagYOLO  = "yolo"
	flagMOT   = "mot"
	flagTrail = "trail"
	flagOut   = "out"
)

func gifCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "gif",
		Usage: "render a frame sequence with its labels as an animated gif",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagLayer, Value: "Img0", Usage: "file prefix of the frames to render, eg: Img0, Seg, DepthGT"},
			&cli.IntFlag{Name: flagFirst, Usage: "first frame number, 0 for the start of the sequence"},
			&cli.IntFlag{Name: flagLast, Usage: "last frame number, 0 for the end of the sequence"},
			&cli.IntFlag{Name: flagFPS, Value: 30, Usage: "frames per second"},
			&cli.IntFlag{Name: flagWidth, Usage: "scale frames to this width, 0 keeps the size"},
			&cli.BoolFlag{Name: flagYOLO, Usage: "draw the per-frame box labels"},
			&cli.BoolFlag{Name: flagMOT, Usage: "draw the track history boxes"},
			&cli.BoolFlag{Name: flagTrail, Usage: "draw the projected path of each track"},
			&cli.StringFlag{Name: flagOut, Usage: "output file, defaults to {layer}.gif"},
		},
		Before: e.loadClasses,
		Action: func(c *cli.Context) error {

			layer := c.String(flagLayer)
			exts := append([]string{raster.PFMExt}, labelio.ColorExts...)

			seq, err := labelio.ScanSequence(e.params.InputDir, layer, exts...)

			if err != nil {
				return err
			}

			overlay, err := e.overlay(c)

			if err != nil {
				return err
			}

			anim, err := render.NewAnimation(c.Int(flagFPS), c.Int(flagWidth))

			if err != nil {
				return err
			}

			first, last := c.Int(flagFirst), c.Int(flagLast)

			for _, f := range seq {
				if (first > 0 && f.Number < first) || (last > 0 && f.Number > last) {
					continue
				}

				img, err := render.LoadFrame(f.Path)

				if err != nil {
					e.log.Warnw("frame skipped", "path", f.Path, "error", err)
					continue
				}

				overlay.Draw(&img, f.Number)
				err = anim.Add(img, fmt.Sprintf("%s %d", layer, f.Number))
				img.Close()

				if err != nil {
					return err
				}
			}

			out := c.String(flagOut)

			if out == "" {
				out = layer + ".gif"
			}

			if err := anim.Write(out); err != nil {
				return err
			}

			e.log.Infow("animation written", "file", out, "frames", anim.Len())
			return nil
		},
	}
}

// overlay builds the label overlay selected by the command flags
func (e *env) overlay(c *cli.Context) (*render.Overlay, error) {

	o := render.NewOverlay(e.classes)
	o.Log = e.log

	if c.Bool(flagYOLO) {
		o.Labels = &labelio.FrameWriter{Dir: e.params.YOLODir, Name: e.params.OutputName}
	}

	if !c.Bool(flagMOT) && !c.Bool(flagTrail) {
		return o, nil
	}

	recs, skipped, err := labelio.ReadTracks(e.trackPath())

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.log.Warnw("no track history to draw", "file", e.trackPath())
			return o, nil
		}
		return nil, err
	}

	if skipped > 0 {
		e.log.Warnw("malformed track lines skipped", "file", e.trackPath(), "lines", skipped)
	}

	if c.Bool(flagMOT) {
		o.SetTracks(recs)
	}

	if c.Bool(flagTrail) {
		camera, err := e.params.Camera()

		if err != nil {
			return nil, err
		}

		o.History = labelio.GroupByTrack(recs)
		o.Camera = camera
	}

	return o, nil
}
