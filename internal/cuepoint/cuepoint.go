// Package cuepoint synthesizes per-second navigation markers and renders them
// as the XML tag document flvtool2 injects.
package cuepoint

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"castro/internal/services"
)

// TypeNavigation is the category label written for every marker.
const TypeNavigation = "navigation"

const (
	header = "<?xml version=\"1.0\"?>\n" +
		"<tags>\n" +
		"  <!-- navigation cue points -->\n"
	footer = "</tags>\n"
)

// Names are computed from this epoch so offsets past 24h wrap.
var epoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Marker is a single navigation cue point.
type Marker struct {
	Name      string
	Timestamp string
	Type      string
}

// FormatName renders offset seconds as HH:MM:SS.
func FormatName(offset int) string {
	return epoch.Add(time.Duration(offset) * time.Second).Format("15:04:05")
}

// FormatTimestamp renders offset seconds as milliseconds, e.g. 3 -> "3000".
func FormatTimestamp(offset int) string {
	return fmt.Sprintf("%d000", offset)
}

// Markers returns one marker per whole second in [0, duration).
func Markers(duration int) []Marker {
	if duration <= 0 {
		return nil
	}
	markers := make([]Marker, 0, duration)
	for i := 0; i < duration; i++ {
		markers = append(markers, Marker{
			Name:      FormatName(i),
			Timestamp: FormatTimestamp(i),
			Type:      TypeNavigation,
		})
	}
	return markers
}

// Write emits the cuepoint document for duration seconds.
func Write(w io.Writer, duration int) error {
	if duration < 0 {
		return services.Wrap(services.ErrValidation, "cuepoints", "generate", fmt.Sprintf("negative duration %d", duration), nil)
	}
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, header); err != nil {
		return err
	}
	for _, m := range Markers(duration) {
		if _, err := fmt.Fprintf(bw,
			"  <metatag event=\"onCuePoint\">\n"+
				"    <name>%s</name>\n"+
				"    <timestamp>%s</timestamp>\n"+
				"    <type>%s</type>\n"+
				"  </metatag>\n",
			m.Name, m.Timestamp, m.Type); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(bw, footer); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes the document to path, replacing any prior content.
func WriteFile(path string, duration int) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "cuepoints", "open", path, err)
	}
	if err := Write(file, duration); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrFilesystem, "cuepoints", "close", path, err)
	}
	return nil
}
