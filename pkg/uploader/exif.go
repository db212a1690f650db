package uploader

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureInfo is metadata read from the image itself, attached to the
// local upload journal for display.
type CaptureInfo struct {
	CapturedAt int64 // unix seconds, 0 when absent
	Width      int
	Height     int
}

// ExtractCaptureInfo reads EXIF data from an image file. Files without
// EXIF (PNG, GIF, stripped JPEGs) yield an empty CaptureInfo, never an
// error.
func ExtractCaptureInfo(filePath string) CaptureInfo {
	var info CaptureInfo

	file, err := os.Open(filePath)
	if err != nil {
		return info
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return info
	}

	if t, err := x.DateTime(); err == nil {
		info.CapturedAt = t.Unix()
	}

	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		if w, err := tag.Int(0); err == nil {
			info.Width = w
		}
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		if h, err := tag.Int(0); err == nil {
			info.Height = h
		}
	}

	return info
}
