package simplesocial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

func TestNormalizeBasename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain text file", filename: "sunset.txt", want: "sunset"},
		{name: "alt text file", filename: "sunset-alt.txt", want: "sunset"},
		{name: "numbered image", filename: "sunset-1.jpg", want: "sunset"},
		{name: "multi digit suffix", filename: "sunset-12.png", want: "sunset"},
		{name: "numbered alt", filename: "sunset-2-alt.txt", want: "sunset"},
		{name: "video", filename: "storm.mp4", want: "storm"},
		{name: "no extension", filename: "notes", want: "notes"},
		{name: "hyphen without digits survives", filename: "mid-day.jpg", want: "mid-day"},
		{name: "only the trailing numeric suffix strips", filename: "trip-2024-3.jpg", want: "trip-2024"},
		{name: "alt stripped before number", filename: "beach-3-alt.png", want: "beach"},
		{name: "trailing hyphen alone survives", filename: "dash-.txt", want: "dash-"},
		{name: "path prefix removed", filename: "posts/sunset-1.jpg", want: "sunset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplesocial.NormalizeBasename(tt.filename))
		})
	}
}
