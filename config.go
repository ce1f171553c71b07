package seglabel

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/swdee/go-seglabel/geometry"
)

// LabelFormat selects which label files are written
type LabelFormat string

const (
	// FormatYOLO writes per-frame normalized box files only
	FormatYOLO LabelFormat = "YOLO"
	// FormatMOT writes the cross-frame track history only
	FormatMOT LabelFormat = "MOT"
	// FormatAll writes both
	FormatAll LabelFormat = "ALL"
)

// YOLO reports whether per-frame box files are written
func (f LabelFormat) YOLO() bool {
	return f == FormatYOLO || f == FormatAll
}

// MOT reports whether the track history file is written
func (f LabelFormat) MOT() bool {
	return f == FormatMOT || f == FormatAll
}

// Params is the immutable parameter bundle handed to the engine at session
// start.  Field tags name the keys of the settings file.
type Params struct {
	// camera
	FOVDegrees float64 `settings:"FOV_degrees"`
	Width      int     `settings:"image_width"`
	Height     int     `settings:"image_height"`
	Baseline   float64 `settings:"baseline_meters"`
	MaxDepth   float64 `settings:"MaxDepth"`

	// extraction
	Threshold int `settings:"Threshold"`
	Tolerance int `settings:"Color_Tolerance"`

	// labeling inputs and outputs
	InputDir     string      `settings:"Input_folder"`
	LabelPrefix  string      `settings:"Label_Img"`
	DepthPrefix  string      `settings:"Depth_Img"`
	OutputName   string      `settings:"Output_Name"`
	YOLODir      string      `settings:"YOLO_Label_folder"`
	MOTDir       string      `settings:"MOT_Label_folder"`
	Format       LabelFormat `settings:"Labeling_Format"`
	ClearOutputs bool        `settings:"Clear_Output_Folder"`

	// dataset preparation
	RawDir     string `settings:"Raw_Data_folder"`
	StageDir   string `settings:"output_folder_Seg"`
	ResultsDir string `settings:"output_folder"`
	FrameCount int    `settings:"Frame_Num"`
}

// DefaultParams returns the parameters used when no settings file is given
func DefaultParams() Params {
	return Params{
		FOVDegrees:   90,
		Width:        640,
		Height:       480,
		Baseline:     1.0,
		MaxDepth:     100,
		Threshold:    0,
		Tolerance:    3,
		InputDir:     "ProcessData",
		LabelPrefix:  "Seg",
		DepthPrefix:  "DepthGT",
		OutputName:   "Img0",
		YOLODir:      "YOLO_Label",
		MOTDir:       "MOT_Label",
		Format:       FormatAll,
		ClearOutputs: false,
		RawDir:       "RawData",
		StageDir:     "ProcessData",
		ResultsDir:   filepath.Join("Results", "Img"),
		FrameCount:   600,
	}
}

// LoadSettings reads a settings file of "key: value" or "key=value" lines on
// top of DefaultParams.  Blank lines and '#' comments are ignored, unknown
// keys are skipped.  A missing file returns the defaults.
func LoadSettings(path string) (Params, error) {

	p := DefaultParams()

	raw, err := readSettings(path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, err
	}

	if err := p.apply(raw); err != nil {
		return p, errors.Wrapf(err, "error decoding settings %s", path)
	}

	if err := p.Validate(); err != nil {
		return p, errors.Wrapf(err, "invalid settings %s", path)
	}

	return p, nil
}

// readSettings returns the key values of a settings file with the values
// coerced to bool, int, float64 or string
func readSettings(path string) (map[string]any, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	out := make(map[string]any)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := strings.IndexAny(line, ":=")

		if sep < 0 {
			continue
		}

		key := strings.TrimSpace(line[:sep])
		value := line[sep+1:]

		// strip trailing comments
		if i := strings.Index(value, "#"); i >= 0 {
			value = value[:i]
		}

		out[key] = coerce(strings.TrimSpace(value))
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading settings")
	}

	return out, nil
}

// coerce converts a settings value to the narrowest matching type
func coerce(value string) any {

	switch strings.ToLower(value) {
	case "true", "false":
		return cast.ToBool(value)
	}

	if i, err := cast.ToIntE(value); err == nil && !strings.Contains(value, ".") {
		return i
	}

	if f, err := cast.ToFloat64E(value); err == nil {
		return f
	}

	return value
}

// apply decodes the raw settings into p, overwriting only the keys present
func (p *Params) apply(raw map[string]any) error {

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "settings",
		WeaklyTypedInput: true,
		Result:           p,
	})

	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return err
	}

	p.Format = LabelFormat(strings.ToUpper(string(p.Format)))

	// settings written on windows use backslash separators
	for _, dir := range []*string{&p.InputDir, &p.YOLODir, &p.MOTDir, &p.RawDir, &p.StageDir, &p.ResultsDir} {
		*dir = filepath.FromSlash(strings.ReplaceAll(*dir, `\`, "/"))
	}

	return nil
}

// Validate checks the parameters are usable
func (p Params) Validate() error {

	if _, err := p.Camera(); err != nil {
		return err
	}

	if p.MaxDepth <= geometry.MinDepth {
		return errors.Errorf("invalid MaxDepth %v", p.MaxDepth)
	}

	if p.Threshold < 0 {
		return errors.Errorf("invalid Threshold %d", p.Threshold)
	}

	if p.Tolerance < 0 || p.Tolerance > 255 {
		return errors.Errorf("invalid colour tolerance %d", p.Tolerance)
	}

	switch p.Format {
	case FormatYOLO, FormatMOT, FormatAll:
	default:
		return errors.Errorf("unknown labeling format %q", p.Format)
	}

	return nil
}

// Camera returns the camera model described by the parameters
func (p Params) Camera() (*geometry.CameraModel, error) {
	return geometry.NewCameraModel(p.FOVDegrees, p.Width, p.Height, p.Baseline)
}
