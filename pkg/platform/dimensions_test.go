package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultResolution(t *testing.T) {
	assert.Equal(t, "1480x720", NewDeviceDimensions().ScreenResolution())
}

func TestSaveDeviceDimensions(t *testing.T) {
	tests := []struct {
		name        string
		metrics     DisplayMetrics
		orientation Orientation
		want        string
	}{
		{
			name:        "portrait adds nav bar height",
			metrics:     DisplayMetrics{Real: Size{1080, 2160}, App: Size{1080, 2016}},
			orientation: OrientationPortrait,
			want:        "2304x1080",
		},
		{
			name:        "landscape adds nav bar width",
			metrics:     DisplayMetrics{Real: Size{2160, 1080}, App: Size{2016, 1080}},
			orientation: OrientationLandscape,
			want:        "2304x1080",
		},
		{
			name:        "portrait ignores horizontal bar",
			metrics:     DisplayMetrics{Real: Size{1080, 2160}, App: Size{1000, 2160}},
			orientation: OrientationPortrait,
			want:        "2160x1080",
		},
		{
			name:        "undefined keeps real size",
			metrics:     DisplayMetrics{Real: Size{1080, 2160}, App: Size{1080, 2016}},
			orientation: OrientationUndefined,
			want:        "2160x1080",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeviceDimensions()
			d.SaveDeviceDimensions(tt.metrics, tt.orientation)
			assert.Equal(t, tt.want, d.ScreenResolution())
		})
	}
}

func TestParseWMSize(t *testing.T) {
	m, err := ParseWMSize("Physical size: 1080x2340\nOverride size: 720x1560\n")
	require.NoError(t, err)
	assert.Equal(t, Size{1080, 2340}, m.Real)
	assert.Equal(t, Size{720, 1560}, m.App)

	m, err = ParseWMSize("Physical size: 1440x3040\n")
	require.NoError(t, err)
	assert.Equal(t, m.Real, m.App)

	m, err = ParseWMSize("Display: 0\nPhysical size: 1080x2340\nDensity: 440\n")
	require.NoError(t, err)
	assert.Equal(t, Size{1080, 2340}, m.Real)

	_, err = ParseWMSize("Physical size: wide\n")
	assert.Error(t, err)

	_, err = ParseWMSize("garbage")
	assert.Error(t, err)
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("Landscape")
	require.NoError(t, err)
	assert.Equal(t, OrientationLandscape, o)

	_, err = ParseOrientation("sideways")
	assert.Error(t, err)
}
