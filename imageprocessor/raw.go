package imageprocessor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	exiftool "github.com/barasher/go-exiftool"
	"gocv.io/x/gocv"

	"imagedup/logging"
)

// rawFormats are camera RAW extensions the preview loader understands.
var rawFormats = []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf", ".orf", ".rw2", ".pef", ".raw"}

// IsRawFormat checks if a file is in RAW format
func IsRawFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range rawFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// ExiftoolAvailable reports whether an exiftool binary usable for
// preview extraction is present on this system.
func ExiftoolAvailable() bool {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return false
	}
	et.Close()
	return true
}

// loadRawImage extracts the embedded preview JPEG from a RAW file and
// loads that instead of the sensor data, which OpenCV cannot decode.
func loadRawImage(path string) (gocv.Mat, error) {
	if !ExiftoolAvailable() {
		return gocv.NewMat(), fmt.Errorf("cannot load RAW image %s: exiftool not available", path)
	}

	tempPath := filepath.Join(os.TempDir(), filepath.Base(path)+".jpg")
	defer os.Remove(tempPath)

	if err := tryExiftoolPreviewExtraction(path, tempPath); err != nil {
		return gocv.NewMat(), fmt.Errorf("cannot load RAW image %s: %v", path, err)
	}

	img := gocv.IMRead(tempPath, gocv.IMReadGrayScale)
	if img.Empty() {
		return img, fmt.Errorf("extracted preview for %s is not decodable", path)
	}
	return img, nil
}

// tryExiftoolPreviewExtraction tries to extract an embedded preview
// image with exiftool, from the largest variant down to the thumbnail.
func tryExiftoolPreviewExtraction(path, outputPath string) error {
	tags := []string{"-LargestImagePreview", "-PreviewImage", "-ThumbnailImage"}

	var stderr bytes.Buffer
	for _, tag := range tags {
		outFile, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %v", err)
		}

		cmd := exec.Command("exiftool", "-b", tag, path)
		cmd.Stdout = outFile
		cmd.Stderr = &stderr

		err = cmd.Run()
		outFile.Close()

		if err == nil && hasFileContent(outputPath) {
			return nil
		}
		logging.LogWarning("Preview extraction with %s failed for %s, trying next tag", tag, path)
	}

	return fmt.Errorf("all exiftool preview extraction methods failed")
}

// hasFileContent checks that a path exists and is non-empty
func hasFileContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
