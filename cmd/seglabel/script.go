package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/annotation"
)

// runScript drives a labeling store with one command per line read from in,
// reporting each outcome to out.  A failed command is reported and the
// script continues, the script ends at quit or end of input.
func runScript(store *annotation.Store, in io.Reader, out io.Writer) error {

	sc := bufio.NewScanner(in)

	fmt.Fprintf(out, "frame %d\n", store.Frame())

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])

		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		if err := runCommand(store, cmd, fields[1:], out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	return errors.Wrap(sc.Err(), "error reading commands")
}

func runCommand(store *annotation.Store, cmd string, args []string, out io.Writer) error {

	switch cmd {
	case "pick":
		if len(args) != 3 {
			return errors.New("usage: pick X Y CLASS")
		}

		vals := make([]int, 3)

		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return errors.Wrapf(err, "bad argument %q", a)
			}
			vals[i] = v
		}

		res, err := store.Pick(vals[0], vals[1], vals[2])

		if err != nil {
			return err
		}

		if res == annotation.PickRemoved {
			fmt.Fprintln(out, "removed")
			return nil
		}

		b, _ := store.Provisional()
		fmt.Fprintf(out, "provisional class %d %s\n", b.ClassID, b.Bounds)

	case "confirm":
		b, err := store.Confirm()

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "confirmed track %d class %d %s\n", b.TrackID, b.ClassID, b.Bounds)

	case "cancel":
		if store.Cancel() {
			fmt.Fprintln(out, "cancelled")
		}

	case "next", "prev":
		move := store.Next
		if cmd == "prev" {
			move = store.Previous
		}

		moved, err := move()

		if err != nil {
			return err
		}

		if moved {
			fmt.Fprintf(out, "frame %d\n", store.Frame())
		}

	case "save":
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved frame %d\n", store.Frame())

	case "boxes":
		for _, b := range store.Boxes() {
			state := "provisional"
			if b.Confirmed {
				state = "track " + strconv.Itoa(b.TrackID)
			}
			fmt.Fprintf(out, "%s class %d %s\n", state, b.ClassID, b.Bounds)
		}

	case "frame":
		fmt.Fprintf(out, "frame %d\n", store.Frame())

	default:
		return errors.Errorf("unknown command %q", cmd)
	}

	return nil
}
