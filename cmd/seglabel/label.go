package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/batch"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/region"
	"github.com/swdee/go-seglabel/trackdb"
	"github.com/urfave/cli/v2"
)

// pick is a parsed --pick value
type pick struct {
	x, y    int
	classID int
	// frame is the frame to sample the colour from, -1 for the first frame
	frame int
}

// parsePick parses "x,y,class[,frame]"
func parsePick(s string) (pick, error) {

	parts := strings.Split(s, ",")

	if len(parts) != 3 && len(parts) != 4 {
		return pick{}, errors.Errorf("invalid pick %q, expected x,y,class[,frame]", s)
	}

	vals := make([]int, len(parts))

	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))

		if err != nil {
			return pick{}, errors.Wrapf(err, "invalid pick %q", s)
		}

		vals[i] = v
	}

	p := pick{x: vals[0], y: vals[1], classID: vals[2], frame: -1}

	if len(vals) == 4 {
		p.frame = vals[3]
	}

	return p, nil
}

// trackPath is the track history file written by labeling commands
func (e *env) trackPath() string {
	return filepath.Join(e.params.MOTDir, e.params.OutputName+labelio.LabelExt)
}

// openDataset opens the labeling input folder, failing when it holds no
// frames
func (e *env) openDataset() (*labelio.Dataset, error) {

	ds, err := labelio.OpenDataset(e.params.InputDir, e.params.LabelPrefix, e.params.DepthPrefix)

	if err != nil {
		return nil, err
	}

	if len(ds.Frames()) == 0 {
		return nil, errors.Errorf("no %s_ frames in %s", e.params.LabelPrefix, e.params.InputDir)
	}

	return ds, nil
}

// selectors builds selectors from the picks, sampling colours from the
// dataset frames
func (e *env) selectors(ds *labelio.Dataset, values []string) ([]region.Selector, error) {

	var out []region.Selector

	for _, v := range values {
		p, err := parsePick(v)

		if err != nil {
			return nil, err
		}

		frame := p.frame

		if frame < 0 {
			frame = ds.Frames()[0]
		}

		color, err := ds.Color(frame)

		if err != nil {
			return nil, err
		}

		sel, err := region.NewSelector(color, p.x, p.y, p.classID, e.params.Tolerance)

		if err != nil {
			return nil, errors.Wrapf(err, "pick %q", v)
		}

		out = append(out, sel)
	}

	return out, nil
}

// locator returns the back-projection locator of the configured camera
func (e *env) locator() (*annotation.Locator, error) {

	camera, err := e.params.Camera()

	if err != nil {
		return nil, err
	}

	return annotation.NewLocator(camera), nil
}

// saveDB stores the records of a session when a database path is given
func (e *env) saveDB(ctx context.Context, path string, id uuid.UUID, source string, recs []annotation.TrackRecord) error {

	if path == "" {
		return nil
	}

	db, err := trackdb.Open(ctx, path)

	if err != nil {
		return err
	}

	defer db.Close()

	if err := db.SaveSession(ctx, id, source, recs); err != nil {
		return err
	}

	e.log.Infow("session stored", "db", path, "session", id.String(), "records", len(recs))
	return nil
}

func bulkCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bulk",
		Usage: "label every frame with fixed colour selectors",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     flagPick,
				Aliases:  []string{"p"},
				Usage:    "selector pick x,y,class[,frame], repeat for each object",
				Required: true,
			},
			&cli.IntFlag{Name: flagWorkers, Value: 4, Usage: "frames processed in parallel"},
			&cli.StringFlag{Name: flagDB, Usage: "also store the track history in this database"},
		},
		Before: e.loadClasses,
		Action: func(c *cli.Context) error {

			ds, err := e.openDataset()

			if err != nil {
				return err
			}

			sels, err := e.selectors(ds, c.StringSlice(flagPick))

			if err != nil {
				return err
			}

			loc, err := e.locator()

			if err != nil {
				return err
			}

			d := &batch.Driver{
				Params:  e.params,
				Classes: e.classes,
				Locator: loc,
				Session: annotation.NewSession(),
				Source:  ds,
				Log:     e.log,
				Workers: c.Int(flagWorkers),
			}

			report, err := d.Run(c.Context, sels)

			if err != nil {
				return err
			}

			if report.Errors != nil {
				e.log.Warnw("frames skipped during bulk run", "error", report.Errors)
			}

			return e.saveDB(c.Context, c.String(flagDB), d.Session.ID, "bulk", report.Tracks)
		},
	}
}

func previewCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "show the boxes and pixel counts selectors produce on one frame",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: flagPick, Aliases: []string{"p"}, Required: true,
				Usage: "selector pick x,y,class[,frame]"},
			&cli.IntFlag{Name: flagFrame, Value: -1, Usage: "frame to preview, defaults to the first"},
		},
		Action: func(c *cli.Context) error {

			ds, err := e.openDataset()

			if err != nil {
				return err
			}

			sels, err := e.selectors(ds, c.StringSlice(flagPick))

			if err != nil {
				return err
			}

			frame := c.Int(flagFrame)

			if frame < 0 {
				frame = ds.Frames()[0]
			}

			color, err := ds.Color(frame)

			if err != nil {
				return err
			}

			counts := batch.PixelCounts(color, sels)

			for i, s := range sels {
				fmt.Printf("%s: %d pixels\n", s.Key(), counts[i])
			}

			for _, b := range batch.Preview(color, sels, e.params.Threshold) {
				fmt.Printf("class %d box %s\n", b.ClassID, b.Bounds)
			}

			return nil
		},
	}
}

func labelCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "label",
		Usage: "label frames by hand with commands read from stdin",
		Description: "commands: pick X Y CLASS, confirm, cancel, next, prev, save, boxes, frame, quit.\n" +
			"On exit the current frame is saved and the track history is written.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagDB, Usage: "also store the track history in this database"},
		},
		Before: e.loadClasses,
		Action: func(c *cli.Context) error {

			ds, err := e.openDataset()

			if err != nil {
				return err
			}

			loc, err := e.locator()

			if err != nil {
				return err
			}

			if e.params.ClearOutputs {
				if _, err := fsutil.RemoveMatching(e.params.YOLODir, "*"+labelio.LabelExt); err != nil {
					return err
				}
			}

			var sink annotation.FrameSink

			if e.params.Format.YOLO() {
				sink = &labelio.FrameWriter{
					Dir:     e.params.YOLODir,
					Name:    e.params.OutputName,
					Classes: e.classes,
					Log:     e.log,
				}
			}

			session := annotation.NewSession()
			store, err := annotation.NewStore(session, e.classes, ds, sink, e.log)

			if err != nil {
				return err
			}

			if err := runScript(store, os.Stdin, os.Stdout); err != nil {
				return err
			}

			if err := store.Save(); err != nil {
				return err
			}

			if !e.params.Format.MOT() {
				return nil
			}

			recs, err := store.Tracks(ds, loc)

			if err != nil {
				e.log.Warnw("tracks exported without depth", "error", err)
			}

			if err := labelio.WriteTracks(e.trackPath(), recs); err != nil {
				return err
			}

			e.log.Infow("track history written", "file", e.trackPath(), "records", len(recs),
				"tracks", session.LastTrackID())

			return e.saveDB(c.Context, c.String(flagDB), session.ID, "manual", recs)
		},
	}
}
