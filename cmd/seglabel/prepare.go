package main

import (
	"path/filepath"
	"strings"

	"github.com/swdee/go-seglabel/dataset"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/render"
	"github.com/urfave/cli/v2"
)

func stageCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "stage",
		Usage: "rename and clamp raw captures into the staging folder",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: flagFirst, Value: 1, Usage: "first capture to stage, 1 based"},
			&cli.IntFlag{Name: flagLast, Usage: "last capture to stage, defaults to the settings frame count"},
		},
		Action: func(c *cli.Context) error {

			last := c.Int(flagLast)

			if last == 0 {
				available, err := dataset.FrameCount(e.params.RawDir)

				if err != nil {
					return err
				}

				last = min(available, max(e.params.FrameCount, 1))
			}

			st := &dataset.Stager{MaxDepth: float32(e.params.MaxDepth), Log: e.log}

			report, err := st.Stage(e.params.RawDir, e.params.StageDir, c.Int(flagFirst), last)

			if err != nil {
				return err
			}

			return report.Err()
		},
	}
}

func disparityCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "disparity",
		Usage: "convert staged depth to disparity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagPreview, Usage: "folder to write colour mapped disparity previews to"},
		},
		Action: func(c *cli.Context) error {

			camera, err := e.params.Camera()

			if err != nil {
				return err
			}

			report, err := dataset.ConvertDisparity(e.params.StageDir, camera, float32(e.params.MaxDepth), e.log)

			if err != nil {
				return err
			}

			if dir := c.String(flagPreview); dir != "" {
				if err := writePreviews(e.params.StageDir, dir); err != nil {
					return err
				}
			}

			return report.Err()
		},
	}
}

// writePreviews renders every disparity file of src as a png in dst
func writePreviews(src, dst string) error {

	seq, err := labelio.ScanSequence(src, dataset.DisparityPrefix, raster.PFMExt)

	if err != nil {
		return err
	}

	if err := fsutil.EnsureDir(dst); err != nil {
		return err
	}

	for _, f := range seq {
		img, err := render.LoadFrame(f.Path)

		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(f.Path), raster.PFMExt) + ".png"
		err = raster.WriteMat(filepath.Join(dst, name), img)
		img.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

func resultsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "copy staged stereo, depth and disparity files to the results folder",
		Action: func(c *cli.Context) error {

			n, err := dataset.CopyResults(e.params.StageDir, e.params.ResultsDir)

			if err != nil {
				return err
			}

			e.log.Infow("results copied", "files", n, "folder", e.params.ResultsDir)
			return nil
		},
	}
}
