// Package flvmeta reads playback duration directly from an FLV container,
// without shelling out. It prefers the onMetaData duration and falls back to
// the timestamp of the last tag.
package flvmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	flv "github.com/yutopp/go-flv"
	flvtag "github.com/yutopp/go-flv/tag"

	"castro/internal/services"
)

const metadataObject = "onMetaData"

// Prober implements the pipeline's duration probe in-process.
type Prober struct{}

// Probe returns the duration of the FLV file at path in seconds.
func (Prober) Probe(ctx context.Context, path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "flvmeta", "open", path, err)
	}
	defer file.Close()
	return ReadDuration(ctx, file)
}

// ReadDuration scans the FLV stream in r.
func ReadDuration(ctx context.Context, r io.Reader) (float64, error) {
	dec, err := flv.NewDecoder(r)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, "flvmeta", "header", "not an FLV stream", err)
	}

	var lastTimestamp uint32
	tags := 0
	for {
		if ctx != nil && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		var tag flvtag.FlvTag
		if err := dec.Decode(&tag); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, services.Wrap(services.ErrParse, "flvmeta", "decode", fmt.Sprintf("tag %d", tags), err)
		}
		tags++
		if script, ok := tag.Data.(*flvtag.ScriptData); ok {
			if seconds, found := metadataDuration(script); found {
				tag.Close()
				return seconds, nil
			}
		}
		if tag.Timestamp > lastTimestamp {
			lastTimestamp = tag.Timestamp
		}
		tag.Close()
	}

	if tags == 0 {
		return 0, services.Wrap(services.ErrParse, "flvmeta", "decode", "no tags found", nil)
	}
	return float64(lastTimestamp) / 1000, nil
}

func metadataDuration(script *flvtag.ScriptData) (float64, bool) {
	if script == nil {
		return 0, false
	}
	meta, ok := script.Objects[metadataObject]
	if !ok {
		return 0, false
	}
	switch v := meta["duration"].(type) {
	case float64:
		return v, v >= 0
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		return parsed, err == nil && parsed >= 0
	default:
		return 0, false
	}
}
