package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/go-mp3"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extOPUS = ".opus"
	extM4A  = ".m4a"
	extMP4  = ".mp4"
)

// ErrUnsupported is returned for files the player cannot decode.
var ErrUnsupported = errors.New("unsupported format")

// Supported reports whether path has a decodable audio extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extOGG, extOGA, extOPUS, extM4A, extMP4:
		return true
	}
	return false
}

// decode opens an audio stream for the file behind rs. The stream owns rs
// and closes it.
func decode(rs io.ReadSeekCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extMP3:
		return decodeMP3(rs)
	case extFLAC:
		// Some taggers prepend an ID3v2 tag the FLAC decoder chokes on
		if err := skipID3v2(rs); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(rs)
	case extOGG, extOGA, extOPUS:
		return decodeOgg(rs)
	case extM4A, extMP4:
		return decodeM4A(rs)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// mp3Stream adapts llehouerou/go-mp3 to beep.StreamSeekCloser. The decoder
// always produces 16-bit little-endian stereo.
type mp3Stream struct {
	d      *mp3.Decoder
	closer io.Closer
	buf    []byte
	err    error
}

func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	d, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if d.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(d.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{d: d, closer: rc, buf: make([]byte, 8192)}, format, nil
}

const mp3FrameBytes = 4

func (s *mp3Stream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	want := len(samples) * mp3FrameBytes
	if len(s.buf) < want {
		s.buf = make([]byte, want)
	}

	got, err := io.ReadFull(s.d, s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	n := got / mp3FrameBytes
	for i := range n {
		off := i * mp3FrameBytes
		left := int16(binary.LittleEndian.Uint16(s.buf[off:]))    //nolint:gosec // audio samples
		right := int16(binary.LittleEndian.Uint16(s.buf[off+2:])) //nolint:gosec // audio samples
		samples[i][0] = float64(left) / 32768
		samples[i][1] = float64(right) / 32768
	}
	return n, n > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int {
	return int(max(s.d.SampleCount(), 0))
}

func (s *mp3Stream) Position() int {
	return int(s.d.SamplePosition())
}

func (s *mp3Stream) Seek(p int) error {
	p = min(max(p, 0), s.Len())
	if err := s.d.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error {
	return s.closer.Close()
}

// skipID3v2 positions r after a leading ID3v2 tag, or at the start when
// there is none.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < len(header) || string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Tag size is a syncsafe integer: 7 significant bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(int64(len(header))+size, io.SeekStart)
	return err
}
