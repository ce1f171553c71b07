package seglabel

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Classes is the ordered list of class names, class IDs are 0-based indexes
// into the list
type Classes []string

// ClassIndexError is returned when a class ID falls outside the class list
type ClassIndexError struct {
	ClassID int
	Count   int
}

func (e *ClassIndexError) Error() string {
	return fmt.Sprintf("class id %d out of range, %d classes loaded", e.ClassID, e.Count)
}

// LoadClasses reads the class names from the given text file.  It should
// contain one class name per line, blank lines are ignored.
func LoadClasses(file string) (Classes, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, errors.Wrap(err, "error opening class file")
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var classes Classes

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		classes = append(classes, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading class file")
	}

	return classes, nil
}

// Check returns a ClassIndexError if the class ID is not in the list
func (c Classes) Check(classID int) error {
	if classID < 0 || classID >= len(c) {
		return &ClassIndexError{ClassID: classID, Count: len(c)}
	}
	return nil
}

// Name returns the class name for the given ID
func (c Classes) Name(classID int) (string, error) {
	if err := c.Check(classID); err != nil {
		return "", err
	}
	return c[classID], nil
}

// IsClassIndexError reports whether err is or wraps a ClassIndexError
func IsClassIndexError(err error) bool {
	var target *ClassIndexError
	return errors.As(err, &target)
}
