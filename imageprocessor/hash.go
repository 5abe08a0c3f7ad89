package imageprocessor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
)

// FingerprintBits is the fixed length of the perceptual fingerprint.
const FingerprintBits = 64

// ComputeFileDigest computes the SHA-256 digest of the full file byte
// stream. Two files are exact duplicates iff their digests match.
func ComputeFileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s for hashing: %v", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("cannot hash %s: %v", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeFingerprint computes the 64-bit difference hash of a decoded
// image. The library downsamples to a 9x8 grayscale grid and sets one
// bit per adjacent-pixel intensity comparison, so Hamming distance
// between two fingerprints approximates visual similarity.
func ComputeFingerprint(img gocv.Mat) (uint64, error) {
	if img.Empty() {
		return 0, fmt.Errorf("cannot compute fingerprint for empty image")
	}

	decoded, err := img.ToImage()
	if err != nil {
		return 0, fmt.Errorf("cannot convert image for fingerprinting: %v", err)
	}

	hash, err := goimagehash.DifferenceHash(decoded)
	if err != nil {
		return 0, fmt.Errorf("cannot compute difference hash: %v", err)
	}
	return hash.GetHash(), nil
}

// FingerprintDistance returns the Hamming distance between two
// fingerprints, in [0, FingerprintBits].
func FingerprintDistance(a, b uint64) int {
	left := goimagehash.NewImageHash(a, goimagehash.DHash)
	right := goimagehash.NewImageHash(b, goimagehash.DHash)
	d, err := left.Distance(right)
	if err != nil {
		// Same-kind, same-length hashes cannot mismatch
		return FingerprintBits
	}
	return d
}

// FormatFingerprint renders a fingerprint as fixed-width hex for
// storage and logs.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// ParseFingerprint reads a fingerprint previously written by
// FormatFingerprint.
func ParseFingerprint(s string) (uint64, error) {
	fp, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %v", s, err)
	}
	return fp, nil
}
