package pkg

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrNoContainerHeader is returned when an ISO-media file carries no movie
// header box.
var ErrNoContainerHeader = fmt.Errorf("no mvhd box found")

// isoEpoch is the ISO-media timestamp epoch (seconds since 1904-01-01 UTC).
var isoEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// ContainerInfo is what the mvhd box yields: the creation time as a
// UTC-tagged DateValue (nil when the field is zero, which many encoders
// write) and the media duration (zero when unknown).
type ContainerInfo struct {
	Created  *DateValue
	Duration time.Duration
}

// ReadContainerInfo extracts the movie-header creation time and duration
// from an ISO-media container (MP4, MOV, M4A and friends).
func ReadContainerInfo(path string) (ContainerInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	info, err := parseContainer(file, 0, stat.Size())
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("failed to parse container %s: %w", path, err)
	}
	return info, nil
}

// parseContainer walks the box layout between start and end looking for
// moov/mvhd. Unknown boxes are skipped by size; a malformed size aborts.
func parseContainer(r io.ReadSeeker, start, end int64) (ContainerInfo, error) {
	offset := start
	for offset+8 <= end {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return ContainerInfo{}, err
		}
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return ContainerInfo{}, err
		}
		size := int64(binary.BigEndian.Uint32(header[:4]))
		boxType := string(header[4:8])
		payload := offset + 8
		switch size {
		case 0:
			size = end - offset // box extends to end of enclosing space
		case 1:
			var large [8]byte
			if _, err := io.ReadFull(r, large[:]); err != nil {
				return ContainerInfo{}, err
			}
			size = int64(binary.BigEndian.Uint64(large[:]))
			payload = offset + 16
		}
		if size < payload-offset || offset+size > end {
			return ContainerInfo{}, fmt.Errorf("malformed box %q at offset %d", boxType, offset)
		}
		switch boxType {
		case "moov":
			return parseContainer(r, payload, offset+size)
		case "mvhd":
			return parseMovieHeader(r, payload, offset+size)
		}
		offset += size
	}
	return ContainerInfo{}, ErrNoContainerHeader
}

// parseMovieHeader decodes the fixed leading fields of an mvhd box:
// version/flags, then creation time, modification time, timescale and
// duration (32-bit in version 0, 64-bit times/duration in version 1).
func parseMovieHeader(r io.ReadSeeker, start, end int64) (ContainerInfo, error) {
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return ContainerInfo{}, err
	}
	need := int64(4 + 4 + 4 + 4 + 4) // version 0 layout
	buf := make([]byte, 4+8+8+4+8)   // large enough for version 1
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return ContainerInfo{}, err
	}
	version := buf[0]
	if version == 1 {
		need = int64(4 + 8 + 8 + 4 + 8)
	}
	if end-start < need {
		return ContainerInfo{}, fmt.Errorf("mvhd box truncated: %d bytes", end-start)
	}
	if _, err := io.ReadFull(r, buf[4:need]); err != nil {
		return ContainerInfo{}, err
	}

	var creation, duration uint64
	var timescale uint32
	if version == 1 {
		creation = binary.BigEndian.Uint64(buf[4:12])
		timescale = binary.BigEndian.Uint32(buf[20:24])
		duration = binary.BigEndian.Uint64(buf[24:32])
	} else {
		creation = uint64(binary.BigEndian.Uint32(buf[4:8]))
		timescale = binary.BigEndian.Uint32(buf[12:16])
		duration = uint64(binary.BigEndian.Uint32(buf[16:20]))
	}

	var info ContainerInfo
	if timescale > 0 {
		info.Duration = time.Duration(duration) * time.Second / time.Duration(timescale)
	}
	if creation > 0 {
		t := isoEpoch.Add(time.Duration(creation) * time.Second)
		d := NewDateValue(t, true, TimeZoneValue{Kind: ZoneForceUtc}, PrecisionSecond)
		info.Created = &d
	}
	return info, nil
}
