package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/trackdb"
	"github.com/urfave/cli/v2"
)

func tracksCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "print a track history, or the per track motion summary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagFile, Usage: "track history file, defaults to the settings output"},
			&cli.StringFlag{Name: flagDB, Usage: "read from this database instead of a file"},
			&cli.StringFlag{Name: flagSession, Usage: "database session id, lists sessions when empty"},
			&cli.BoolFlag{Name: flagSummary, Usage: "print per track statistics"},
		},
		Action: func(c *cli.Context) error {

			var (
				recs []annotation.TrackRecord
				err  error
			)

			if db := c.String(flagDB); db != "" {
				recs, err = e.dbRecords(c, db)
			} else {
				recs, err = e.fileRecords(c)
			}

			if err != nil || recs == nil {
				return err
			}

			if !c.Bool(flagSummary) {
				for _, r := range recs {
					fmt.Println(labelio.FormatTrack(r))
				}
				return nil
			}

			for _, s := range labelio.Summarize(recs) {
				fmt.Printf("track %d: frames %d (%d-%d) mean (%.3f, %.3f, %.3f) sd (%.3f, %.3f, %.3f) path %.3f\n",
					s.TrackID, s.Frames, s.FirstFrame, s.LastFrame,
					s.Mean[0], s.Mean[1], s.Mean[2], s.StdDev[0], s.StdDev[1], s.StdDev[2], s.PathLength)
			}

			return nil
		},
	}
}

func (e *env) fileRecords(c *cli.Context) ([]annotation.TrackRecord, error) {

	path := c.String(flagFile)

	if path == "" {
		path = e.trackPath()
	}

	recs, skipped, err := labelio.ReadTracks(path)

	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		e.log.Warnw("malformed track lines skipped", "file", path, "lines", skipped)
	}

	return recs, nil
}

// dbRecords reads a stored session, or lists the sessions and returns nil
// records when no session is named
func (e *env) dbRecords(c *cli.Context, path string) ([]annotation.TrackRecord, error) {

	db, err := trackdb.Open(c.Context, path)

	if err != nil {
		return nil, err
	}

	defer db.Close()

	if c.String(flagSession) == "" {
		sessions, err := db.Sessions(c.Context)

		if err != nil {
			return nil, err
		}

		for _, s := range sessions {
			fmt.Printf("%s %s %d records\n", s.ID, s.Source, s.Tracks)
		}

		return nil, nil
	}

	id, err := uuid.Parse(c.String(flagSession))

	if err != nil {
		return nil, errors.Wrap(err, "invalid session id")
	}

	return db.Session(c.Context, id)
}

func yoloCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "yolo",
		Usage:     "print the boxes of a per-frame label file",
		ArgsUsage: "FRAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagFile, Usage: "label file, defaults to the frame's file in the settings output"},
		},
		Before: e.loadClasses,
		Action: func(c *cli.Context) error {

			path := c.String(flagFile)

			if path == "" {
				if c.NArg() != 1 {
					return errors.New("a FRAME number or --file is required")
				}

				frame, err := parseFrame(c.Args().First())

				if err != nil {
					return err
				}

				path = labelio.FramePath(e.params.YOLODir, e.params.OutputName, frame, labelio.LabelExt)
			}

			lines, skipped, err := labelio.ReadYOLO(path)

			if err != nil {
				return err
			}

			if skipped > 0 {
				e.log.Warnw("malformed label lines skipped", "file", path, "lines", skipped)
			}

			for _, l := range lines {
				name, err := e.classes.Name(l.ClassID)

				if err != nil {
					e.log.Warnw("unknown class", "file", path, "error", err)
					name = "?"
				}

				fmt.Printf("%s %s %s\n", name, l.Format(), l.Bounds(e.params.Width, e.params.Height))
			}

			return nil
		},
	}
}

func parseFrame(s string) (int, error) {

	frame, err := strconv.Atoi(s)

	if err != nil || frame < 0 {
		return 0, errors.Errorf("invalid frame %q", s)
	}

	return frame, nil
}
