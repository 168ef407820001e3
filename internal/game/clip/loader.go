package clip

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Description is the sprite-sheet description a Table is built from.
type Description struct {
	Sheet SheetSpec  `yaml:"sheet"`
	Grid  *GridSpec  `yaml:"grid"`
	Clips []ClipSpec `yaml:"clips"`
}

// SheetSpec names the sheet image and its pixel size.
type SheetSpec struct {
	Image  string `yaml:"image"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// GridSpec divides the sheet into equally sized cells. Clips may then refer to
// frames by row and column instead of by rectangle.
type GridSpec struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// ClipSpec describes one clip. Either Frames or Row must be given; Row requires
// a Grid on the enclosing Description.
//
// Frame timing is taken from the first of: the frame's own duration, the
// clip's Duration, or 1/FPS.
type ClipSpec struct {
	Tag      string      `yaml:"tag"`
	OneShot  bool        `yaml:"one_shot"`
	Frames   []FrameSpec `yaml:"frames"`
	Row      *int        `yaml:"row"`
	Start    int         `yaml:"start"`
	Count    int         `yaml:"count"`
	FPS      float64     `yaml:"fps"`
	Duration string      `yaml:"duration"`
}

// FrameSpec is an explicit frame rectangle.
type FrameSpec struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	W        int    `yaml:"w"`
	H        int    `yaml:"h"`
	Duration string `yaml:"duration"`
}

// LoadDescriptionFromFile reads a YAML sprite-sheet description.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns the parsed Description or a non-nil error. The result
// is not validated; pass it to Load.
func LoadDescriptionFromFile(path string) (Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Description{}, fmt.Errorf("reading sprite description %s: %w", path, err)
	}
	return LoadDescriptionFromBytes(data)
}

// LoadDescriptionFromBytes parses a YAML sprite-sheet description.
//
// Postcondition: Returns the parsed Description or an *AssetError.
func LoadDescriptionFromBytes(data []byte) (Description, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Description{}, &AssetError{Reason: "parsing description YAML: " + err.Error()}
	}
	return desc, nil
}

// LoadFile reads the description at path and builds a Table from it. A
// relative sheet image path is resolved against the description's directory.
//
// Postcondition: Returns a valid Table or a non-nil error.
func LoadFile(path string) (*Table, error) {
	desc, err := LoadDescriptionFromFile(path)
	if err != nil {
		return nil, err
	}
	if desc.Sheet.Image != "" && !filepath.IsAbs(desc.Sheet.Image) {
		desc.Sheet.Image = filepath.Join(filepath.Dir(path), desc.Sheet.Image)
	}
	return Load(desc)
}

// Load validates desc and builds an immutable Table.
//
// Postcondition: Returns a Table whose clips are all non-empty, whose frame
// durations are all positive and whose rectangles all lie within the sheet;
// otherwise returns an *AssetError describing the first violation.
func Load(desc Description) (*Table, error) {
	if desc.Sheet.Width <= 0 || desc.Sheet.Height <= 0 {
		return nil, &AssetError{Reason: fmt.Sprintf("sheet size must be positive, got %dx%d", desc.Sheet.Width, desc.Sheet.Height)}
	}
	if desc.Grid != nil && (desc.Grid.Cols <= 0 || desc.Grid.Rows <= 0) {
		return nil, &AssetError{Reason: fmt.Sprintf("grid must have positive cols and rows, got %dx%d", desc.Grid.Cols, desc.Grid.Rows)}
	}
	if len(desc.Clips) == 0 {
		return nil, &AssetError{Reason: "description defines no clips"}
	}

	sheetRect := image.Rect(0, 0, desc.Sheet.Width, desc.Sheet.Height)
	seen := make(map[string]bool, len(desc.Clips))
	clips := make([]*Clip, 0, len(desc.Clips))
	for _, spec := range desc.Clips {
		tag := strings.TrimSpace(spec.Tag)
		if tag == "" {
			return nil, &AssetError{Reason: "clip tag must not be empty"}
		}
		if seen[tag] {
			return nil, &AssetError{Clip: tag, Reason: "duplicate clip tag"}
		}
		seen[tag] = true

		c, err := buildClip(tag, spec, desc.Grid, sheetRect)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}

	sheet := Sheet{Image: desc.Sheet.Image, Width: desc.Sheet.Width, Height: desc.Sheet.Height}
	return newTable(sheet, clips), nil
}

func buildClip(tag string, spec ClipSpec, grid *GridSpec, sheetRect image.Rectangle) (*Clip, error) {
	fallback, err := clipDuration(tag, spec)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	switch {
	case len(spec.Frames) > 0 && spec.Row != nil:
		return nil, &AssetError{Clip: tag, Reason: "clip must use either frames or row, not both"}
	case len(spec.Frames) > 0:
		for i, fs := range spec.Frames {
			if fs.W <= 0 || fs.H <= 0 {
				return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("frame %d size %dx%d must be positive", i, fs.W, fs.H)}
			}
			d := fallback
			if fs.Duration != "" {
				d, err = time.ParseDuration(fs.Duration)
				if err != nil {
					return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("frame %d: duration %q: %v", i, fs.Duration, err)}
				}
			}
			frames = append(frames, Frame{Rect: image.Rect(fs.X, fs.Y, fs.X+fs.W, fs.Y+fs.H), Duration: d})
		}
	case spec.Row != nil:
		if grid == nil {
			return nil, &AssetError{Clip: tag, Reason: "row-based clip requires a grid"}
		}
		row := *spec.Row
		if row < 0 || row >= grid.Rows {
			return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("row %d out of grid range [0,%d)", row, grid.Rows)}
		}
		if spec.Start < 0 || spec.Start+spec.Count > grid.Cols {
			return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("columns [%d,%d) out of grid range [0,%d)", spec.Start, spec.Start+spec.Count, grid.Cols)}
		}
		cw := sheetRect.Dx() / grid.Cols
		ch := sheetRect.Dy() / grid.Rows
		for col := spec.Start; col < spec.Start+spec.Count; col++ {
			frames = append(frames, Frame{
				Rect:     image.Rect(col*cw, row*ch, (col+1)*cw, (row+1)*ch),
				Duration: fallback,
			})
		}
	}

	if len(frames) == 0 {
		return nil, &AssetError{Clip: tag, Reason: "clip has zero frames"}
	}
	for i, f := range frames {
		if f.Rect.Empty() || !f.Rect.In(sheetRect) {
			return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("frame %d rectangle %v is outside sheet %v", i, f.Rect, sheetRect)}
		}
		if f.Duration <= 0 {
			return nil, &AssetError{Clip: tag, Reason: fmt.Sprintf("frame %d duration must be positive, got %v", i, f.Duration)}
		}
	}

	return &Clip{Tag: tag, Frames: frames, OneShot: spec.OneShot}, nil
}

// clipDuration resolves the clip-wide default frame duration. Zero means none
// was given; frames without their own duration then fail validation.
func clipDuration(tag string, spec ClipSpec) (time.Duration, error) {
	if spec.Duration != "" {
		d, err := time.ParseDuration(spec.Duration)
		if err != nil {
			return 0, &AssetError{Clip: tag, Reason: fmt.Sprintf("duration %q: %v", spec.Duration, err)}
		}
		return d, nil
	}
	if spec.FPS < 0 {
		return 0, &AssetError{Clip: tag, Reason: fmt.Sprintf("fps must be positive, got %v", spec.FPS)}
	}
	if spec.FPS > 0 {
		return time.Duration(float64(time.Second) / spec.FPS), nil
	}
	return 0, nil
}
