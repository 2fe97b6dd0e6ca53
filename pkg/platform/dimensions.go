package platform

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Orientation of the device screen.
type Orientation int

const (
	OrientationUndefined Orientation = iota
	OrientationPortrait
	OrientationLandscape
)

// ParseOrientation accepts "portrait", "landscape" or "" (undefined).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "", "undefined":
		return OrientationUndefined, nil
	case "portrait", "p":
		return OrientationPortrait, nil
	case "landscape", "l":
		return OrientationLandscape, nil
	}
	return OrientationUndefined, fmt.Errorf("unknown orientation: %s", s)
}

// Size is a width x height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// DisplayMetrics describes the whole panel (Real) and the area left to
// applications once system bars are drawn (App).
type DisplayMetrics struct {
	Real Size
	App  Size
}

// DeviceDimensions remembers the resolution sessions should use.
// Mutable
type DeviceDimensions struct {
	height int
	width  int
}

func NewDeviceDimensions() *DeviceDimensions {
	return &DeviceDimensions{height: 720, width: 1480}
}

// SaveDeviceDimensions records the real panel size, growing it by the
// navigation bar along the axis the bar occupies in the given orientation.
func (d *DeviceDimensions) SaveDeviceDimensions(m DisplayMetrics, o Orientation) {
	nav := Size{
		Width:  m.Real.Width - m.App.Width,
		Height: m.Real.Height - m.App.Height,
	}
	d.height = m.Real.Height
	d.width = m.Real.Width

	switch o {
	case OrientationPortrait:
		if nav.Height > 0 {
			d.height += nav.Height
		}
	case OrientationLandscape:
		if nav.Width > 0 {
			d.width += nav.Width
		}
	}
}

// ScreenResolution returns "<long>x<short>".
func (d *DeviceDimensions) ScreenResolution() string {
	if d.height > d.width {
		return fmt.Sprintf("%dx%d", d.height, d.width)
	}
	return fmt.Sprintf("%dx%d", d.width, d.height)
}

// ParseSize parses "1080x2340".
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return Size{Width: width, Height: height}, nil
}

// ParseWMSize reads the output of `wm size`. The override size, when
// present, is what applications are given.
func ParseWMSize(out string) (DisplayMetrics, error) {
	var m DisplayMetrics
	var havePhysical bool

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		var dst *Size
		switch strings.TrimSpace(key) {
		case "Physical size":
			dst = &m.Real
			havePhysical = true
		case "Override size":
			dst = &m.App
		default:
			continue
		}
		size, err := ParseSize(val)
		if err != nil {
			return m, err
		}
		*dst = size
	}
	if !havePhysical {
		return m, fmt.Errorf("no physical size in wm output")
	}
	if m.App == (Size{}) {
		m.App = m.Real
	}
	return m, nil
}

// QueryDisplayMetrics runs `wm size` on the device.
func QueryDisplayMetrics(ctx context.Context) (DisplayMetrics, error) {
	out, err := exec.CommandContext(ctx, "wm", "size").Output()
	if err != nil {
		return DisplayMetrics{}, fmt.Errorf("wm size: %w", err)
	}
	return ParseWMSize(string(out))
}
