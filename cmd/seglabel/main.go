/*
Command seglabel prepares simulator captures and labels them from their
segmentation images, writing per-frame box labels and a cross-frame track
history with camera-space positions.
*/
package main

import (
	"fmt"
	"os"

	"github.com/swdee/go-seglabel"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagSettings = "settings"
	flagClasses  = "classes"
	flagDebug    = "debug"
	flagPick     = "pick"
	flagFrame    = "frame"
	flagWorkers  = "workers"
	flagDB       = "db"
	flagSession  = "session"
	flagSummary  = "summary"
	flagFirst    = "first"
	flagLast     = "last"
	flagPreview  = "preview"
	flagFile     = "file"
)

// env is the state shared by every command, filled in before a command runs
type env struct {
	params  seglabel.Params
	classes seglabel.Classes
	log     *zap.SugaredLogger
}

func main() {

	e := &env{}

	app := &cli.App{
		Name:  "seglabel",
		Usage: "label simulated camera captures from segmentation images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagSettings,
				Aliases: []string{"s"},
				Value:   "Settings.txt",
				Usage:   "settings file, defaults are used when missing",
			},
			&cli.StringFlag{
				Name:    flagClasses,
				Aliases: []string{"c"},
				Value:   "classes.txt",
				Usage:   "class names file, one per line",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: e.setup,
		After: func(c *cli.Context) error {
			if e.log != nil {
				e.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			stageCommand(e),
			disparityCommand(e),
			resultsCommand(e),
			bulkCommand(e),
			previewCommand(e),
			labelCommand(e),
			tracksCommand(e),
			yoloCommand(e),
			gifCommand(e),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup builds the logger and loads the settings file
func (e *env) setup(c *cli.Context) error {

	log, err := seglabel.NewLogger(c.Bool(flagDebug))

	if err != nil {
		return err
	}

	e.log = log

	e.params, err = seglabel.LoadSettings(c.String(flagSettings))

	if err != nil {
		return err
	}

	e.log.Debugw("settings loaded", "file", c.String(flagSettings), "format", e.params.Format,
		"width", e.params.Width, "height", e.params.Height, "fov", e.params.FOVDegrees)

	return nil
}

// loadClasses reads the class list, commands that emit labels call this
func (e *env) loadClasses(c *cli.Context) error {

	classes, err := seglabel.LoadClasses(c.String(flagClasses))

	if err != nil {
		return err
	}

	e.classes = classes
	return nil
}
