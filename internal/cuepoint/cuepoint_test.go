package cuepoint

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"castro/internal/services"
)

const threeSecondDoc = `<?xml version="1.0"?>
<tags>
  <!-- navigation cue points -->
  <metatag event="onCuePoint">
    <name>00:00:00</name>
    <timestamp>0000</timestamp>
    <type>navigation</type>
  </metatag>
  <metatag event="onCuePoint">
    <name>00:00:01</name>
    <timestamp>1000</timestamp>
    <type>navigation</type>
  </metatag>
  <metatag event="onCuePoint">
    <name>00:00:02</name>
    <timestamp>2000</timestamp>
    <type>navigation</type>
  </metatag>
</tags>
`

func TestWriteThreeSeconds(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, 3); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if buf.String() != threeSecondDoc {
		t.Fatalf("unexpected document:\n%s", buf.String())
	}
}

func TestWriteZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, 0); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	want := "<?xml version=\"1.0\"?>\n<tags>\n  <!-- navigation cue points -->\n</tags>\n"
	if buf.String() != want {
		t.Fatalf("unexpected document %q", buf.String())
	}
	if strings.Contains(buf.String(), "metatag") {
		t.Fatal("expected no markers")
	}
}

func TestWriteRejectsNegativeDuration(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, -1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormatName(t *testing.T) {
	cases := map[int]string{
		0:     "00:00:00",
		59:    "00:00:59",
		61:    "00:01:01",
		3661:  "01:01:01",
		86399: "23:59:59",
		86400: "00:00:00",
		86401: "00:00:01",
	}
	for offset, want := range cases {
		if got := FormatName(offset); got != want {
			t.Fatalf("FormatName(%d) = %s, want %s", offset, got, want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[int]string{0: "0000", 1: "1000", 42: "42000", 3600: "3600000"}
	for offset, want := range cases {
		if got := FormatTimestamp(offset); got != want {
			t.Fatalf("FormatTimestamp(%d) = %s, want %s", offset, got, want)
		}
	}
}

func TestMarkersAscending(t *testing.T) {
	markers := Markers(5)
	if len(markers) != 5 {
		t.Fatalf("expected 5 markers, got %d", len(markers))
	}
	for i, m := range markers {
		if m.Name != FormatName(i) || m.Timestamp != FormatTimestamp(i) || m.Type != TypeNavigation {
			t.Fatalf("unexpected marker %d: %#v", i, m)
		}
	}
	if Markers(0) != nil {
		t.Fatal("expected nil markers for zero duration")
	}
}

func TestWriteFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.swf-cuepoints.xml")
	if err := os.WriteFile(path, []byte(strings.Repeat("stale\n", 100)), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := WriteFile(path, 3); err != nil {
		t.Fatalf("first WriteFile: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := WriteFile(path, 3); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected byte-identical output")
	}
	if string(first) != threeSecondDoc {
		t.Fatalf("expected stale content replaced, got:\n%s", first)
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cues.xml")
	if err := WriteFile(path, 1); !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}
