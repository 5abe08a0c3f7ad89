package imageprocessor

import (
	"fmt"

	"gocv.io/x/gocv"

	"imagedup/logging"
)

// LoadImage loads an image from disk into an OpenCV Mat. Standard
// formats are read directly; a grayscale re-read is attempted before
// giving up because some malformed files decode only single-channel.
// RAW camera formats fall through to the embedded-preview loader.
func LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		return img, nil
	}
	img.Close()

	gray := gocv.IMRead(path, gocv.IMReadGrayScale)
	if !gray.Empty() {
		return gray, nil
	}
	gray.Close()

	if IsRawFormat(path) {
		logging.DebugLog("Standard decode failed for RAW file %s, trying preview extraction", path)
		return loadRawImage(path)
	}

	return gocv.NewMat(), fmt.Errorf("cannot decode image %s", path)
}
