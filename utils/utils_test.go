package utils

import (
	"os"
	"testing"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"imagedup"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestParseArgumentsCommandAndFlags(t *testing.T) {
	withArgs(t, "scan", "--folder=/photos", "--threshold=0.9", "--debug")

	args := ParseArguments()
	if args["command"] != "scan" {
		t.Errorf("command = %q, want scan", args["command"])
	}
	if args["folder"] != "/photos" {
		t.Errorf("folder = %q", args["folder"])
	}
	if args["threshold"] != "0.9" {
		t.Errorf("threshold = %q", args["threshold"])
	}
	if args["debug"] != "true" {
		t.Errorf("bare flag debug = %q, want true", args["debug"])
	}
}

func TestParseArgumentsSpaceSeparatedValues(t *testing.T) {
	withArgs(t, "scan", "--folder", "/photos", "--batch-size", "50")

	args := ParseArguments()
	if args["folder"] != "/photos" {
		t.Errorf("folder = %q", args["folder"])
	}
	if args["batch-size"] != "50" {
		t.Errorf("batch-size = %q", args["batch-size"])
	}
}

func TestParseArgumentsPositionalAfterCommand(t *testing.T) {
	withArgs(t, "restore", "backup_deletions_20260829_120000", "--backup-root=/safe")

	args := ParseArguments()
	if args["command"] != "restore" {
		t.Errorf("command = %q, want restore", args["command"])
	}
	if args["arg"] != "backup_deletions_20260829_120000" {
		t.Errorf("positional arg = %q", args["arg"])
	}
	if args["backup-root"] != "/safe" {
		t.Errorf("backup-root = %q", args["backup-root"])
	}
}

func TestParseArgumentsNoCommand(t *testing.T) {
	withArgs(t, "--folder=/photos")

	args := ParseArguments()
	if _, ok := args["command"]; ok {
		t.Errorf("unexpected command %q", args["command"])
	}
	if args["folder"] != "/photos" {
		t.Errorf("folder = %q", args["folder"])
	}
}

func TestParseThreshold(t *testing.T) {
	if v, err := ParseThreshold("0.75"); err != nil || v != 0.75 {
		t.Errorf("ParseThreshold(0.75) = %v, %v", v, err)
	}
	if v, err := ParseThreshold("1.0"); err != nil || v != 1.0 {
		t.Errorf("ParseThreshold(1.0) = %v, %v", v, err)
	}
	for _, bad := range []string{"1.5", "-0.1", "abc", ""} {
		if v, err := ParseThreshold(bad); err == nil || v != 0.85 {
			t.Errorf("ParseThreshold(%q) = %v, %v; want default with error", bad, v, err)
		}
	}
}

func TestParseBatchSize(t *testing.T) {
	if v, err := ParseBatchSize("25"); err != nil || v != 25 {
		t.Errorf("ParseBatchSize(25) = %v, %v", v, err)
	}
	for _, bad := range []string{"0", "-3", "ten", ""} {
		if v, err := ParseBatchSize(bad); err == nil || v != 100 {
			t.Errorf("ParseBatchSize(%q) = %v, %v; want default with error", bad, v, err)
		}
	}
}
