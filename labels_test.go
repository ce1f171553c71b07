package seglabel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predefined_classes.txt")
	require.NoError(t, os.WriteFile(path, []byte("car\n  person \n\ntree\n"), 0o644))

	classes, err := LoadClasses(path)
	require.NoError(t, err)
	assert.Equal(t, Classes{"car", "person", "tree"}, classes)

	name, err := classes.Name(1)
	require.NoError(t, err)
	assert.Equal(t, "person", name)

	_, err = LoadClasses(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestClassIndexError(t *testing.T) {
	classes := Classes{"a", "b"}

	tests := []struct {
		id  int
		bad bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{-1, true},
	}

	for _, tc := range tests {
		err := classes.Check(tc.id)
		if tc.bad {
			require.Error(t, err)
			assert.True(t, IsClassIndexError(errors.Wrap(err, "emit")))
			assert.Contains(t, err.Error(), "2 classes")
		} else {
			assert.NoError(t, err)
		}
	}
}
