package pkg

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box builds one ISO-media box with the given type and payload.
func box(boxType string, payload []byte) []byte {
	b := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(b[:4], uint32(8+len(payload)))
	copy(b[4:8], boxType)
	copy(b[8:], payload)
	return b
}

// mvhdV0 builds a version-0 mvhd payload.
func mvhdV0(creation, timescale, duration uint32) []byte {
	p := make([]byte, 20)
	// version 0, flags 0
	binary.BigEndian.PutUint32(p[4:8], creation)
	binary.BigEndian.PutUint32(p[12:16], timescale)
	binary.BigEndian.PutUint32(p[16:20], duration)
	return p
}

// mvhdV1 builds a version-1 mvhd payload.
func mvhdV1(creation uint64, timescale uint32, duration uint64) []byte {
	p := make([]byte, 32)
	p[0] = 1
	binary.BigEndian.PutUint64(p[4:12], creation)
	binary.BigEndian.PutUint32(p[20:24], timescale)
	binary.BigEndian.PutUint64(p[24:32], duration)
	return p
}

func writeTempContainer(t *testing.T, boxes ...[]byte) string {
	t.Helper()
	var data []byte
	for _, b := range boxes {
		data = append(data, b...)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func isoSeconds(t time.Time) uint64 {
	return uint64(t.Sub(isoEpoch) / time.Second)
}

func TestReadContainerInfoVersion0(t *testing.T) {
	created := time.Date(2021, 6, 1, 6, 0, 0, 0, time.UTC)
	path := writeTempContainer(t,
		box("ftyp", []byte("isom0000")),
		box("moov", box("mvhd", mvhdV0(uint32(isoSeconds(created)), 1000, 30000))),
	)

	info, err := ReadContainerInfo(path)
	require.NoError(t, err)
	require.NotNil(t, info.Created)
	assert.Equal(t, "2021-06-01T06:00:00Z", info.Created.Format())
	assert.True(t, info.Created.IsUTC())
	assert.Equal(t, ZoneForceUtc, info.Created.Zone().Kind)
	assert.Equal(t, 30*time.Second, info.Duration)
}

func TestReadContainerInfoVersion1(t *testing.T) {
	created := time.Date(2021, 6, 1, 6, 0, 0, 0, time.UTC)
	path := writeTempContainer(t,
		box("ftyp", []byte("isom0000")),
		box("free", nil),
		box("moov", box("mvhd", mvhdV1(isoSeconds(created), 600, 54000))),
	)

	info, err := ReadContainerInfo(path)
	require.NoError(t, err)
	require.NotNil(t, info.Created)
	assert.Equal(t, "2021-06-01T06:00:00Z", info.Created.Format())
	assert.Equal(t, 90*time.Second, info.Duration)
}

func TestReadContainerInfoZeroCreation(t *testing.T) {
	// Many encoders write a zero creation time; the duration still counts.
	path := writeTempContainer(t,
		box("moov", box("mvhd", mvhdV0(0, 1000, 5000))),
	)

	info, err := ReadContainerInfo(path)
	require.NoError(t, err)
	assert.Nil(t, info.Created)
	assert.Equal(t, 5*time.Second, info.Duration)
}

func TestReadContainerInfoNoHeader(t *testing.T) {
	path := writeTempContainer(t, box("ftyp", []byte("isom0000")))

	_, err := ReadContainerInfo(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoContainerHeader))
}

func TestReadContainerInfoMalformed(t *testing.T) {
	// A box claiming to be larger than the file aborts parsing.
	raw := box("moov", nil)
	binary.BigEndian.PutUint32(raw[:4], 1<<30)
	path := filepath.Join(t.TempDir(), "broken.mp4")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err := ReadContainerInfo(path)
	assert.Error(t, err)
}
