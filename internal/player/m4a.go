package player

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

const alacFrameSize = 4096

// m4aStream plays AAC or ALAC out of an MP4 container. Each container
// sample decodes to a block of stereo frames.
type m4aStream struct {
	container *m4a.Reader
	closer    io.Closer
	rate      float64
	length    int
	next      int

	decodeSample func([]byte) ([][2]float64, error)
	release      func()

	block [][2]float64
	err   error
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := container.SampleRate()
	channels := int(container.Channels())
	bits := int(container.SampleSize())

	s := &m4aStream{
		container: container,
		closer:    rc,
		rate:      float64(rate),
		length:    int(container.Duration().Seconds() * float64(rate)),
		release:   func() {},
	}
	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}

	switch codec := container.Codec(); codec {
	case m4a.CodecAAC:
		ctx := context.Background()
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, err
		}
		s.decodeSample = func(data []byte) ([][2]float64, error) {
			pcm, err := dec.Decode(ctx, data)
			if err != nil {
				return nil, err
			}
			return int16Frames(pcm, channels), nil
		}
		s.release = func() { dec.Close(ctx) }

	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(rate),
			SampleSize:  bits,
			NumChannels: channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		if bits == 24 {
			format.Precision = 3
		}
		s.decodeSample = func(data []byte) ([][2]float64, error) {
			return pcmFrames(dec.Decode(data), bits, channels), nil
		}

	default:
		return nil, beep.Format{}, fmt.Errorf("%w: m4a codec %s", ErrUnsupported, codec)
	}
	return s, format, nil
}

func (s *m4aStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if len(s.block) == 0 {
			if s.next >= s.container.SampleCount() {
				return n, n > 0
			}
			data, err := s.container.ReadSample(s.next)
			if err != nil {
				s.err = err
				return n, n > 0
			}
			s.next++
			block, err := s.decodeSample(data)
			if err != nil {
				s.err = err
				return n, n > 0
			}
			s.block = block
			continue
		}
		c := copy(samples[n:], s.block)
		s.block = s.block[c:]
		n += c
	}
	return n, true
}

func (s *m4aStream) Err() error { return s.err }
func (s *m4aStream) Len() int   { return s.length }

func (s *m4aStream) Position() int {
	return int(s.container.SampleTime(s.next).Seconds()*s.rate) - len(s.block)
}

func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	at := time.Duration(float64(p) / s.rate * float64(time.Second))
	s.next = s.container.SeekToTime(at)
	s.block = nil
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	s.release()
	return s.closer.Close()
}

// int16Frames spreads interleaved 16-bit PCM over stereo frames. Mono is
// duplicated and channels past the second are dropped.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	if channels <= 0 {
		return nil
	}
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		left := float64(pcm[i*channels]) / 32768
		right := left
		if channels > 1 {
			right = float64(pcm[i*channels+1]) / 32768
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

// pcmFrames does the same for little-endian 16 or 24-bit PCM bytes.
func pcmFrames(data []byte, bits, channels int) [][2]float64 {
	width := bits / 8
	if width != 2 && width != 3 || channels <= 0 {
		return nil
	}
	stride := width * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		left := pcmSample(data[off:], width)
		right := left
		if channels > 1 {
			right = pcmSample(data[off+width:], width)
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

func pcmSample(b []byte, width int) float64 {
	if width == 2 {
		return float64(int16(uint16(b[0])|uint16(b[1])<<8)) / 32768 //nolint:gosec // audio samples
	}
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return float64(v) / 8388608
}
