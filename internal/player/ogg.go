package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	oggHeaderSize   = 27
	oggContinued    = 0x01
	oggTailScan     = 64 * 1024
	opusSampleRate  = 48000
	opusMaxFrame    = 5760
	opusPrerollSize = 3840 // 80ms at 48kHz
)

var (
	errOggCapture  = errors.New("ogg: invalid capture pattern")
	errOggVersion  = errors.New("ogg: unsupported version")
	errOggCodec    = errors.New("ogg: neither opus nor vorbis")
	errOggHeaders  = errors.New("ogg: truncated header packets")
	errOpusHead    = errors.New("opus: invalid OpusHead")
	errVorbisIdent = errors.New("vorbis: invalid identification header")
)

type oggPageHeader struct {
	flags    byte
	granule  int64
	segments []byte
}

func (h *oggPageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.segments {
		n += int64(s)
	}
	return n
}

func readOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [oggHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[:4]) != "OggS" {
		return nil, errOggCapture
	}
	if buf[4] != 0 {
		return nil, errOggVersion
	}
	h := &oggPageHeader{
		flags:    buf[5],
		granule:  int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // -1 marks pages without a packet end
		segments: make([]byte, buf[26]),
	}
	if _, err := io.ReadFull(r, h.segments); err != nil {
		return nil, err
	}
	return h, nil
}

// oggReader splits a single logical Ogg stream into packets.
type oggReader struct {
	r       io.ReadSeeker
	packets [][]byte
	partial []byte
	// resync drops continuation data at the first page read after a seek.
	resync bool
}

func (o *oggReader) readPage() error {
	h, err := readOggPageHeader(o.r)
	if err != nil {
		return err
	}
	body := make([]byte, h.bodySize())
	if _, err := io.ReadFull(o.r, body); err != nil {
		return err
	}

	cur := o.partial
	if h.flags&oggContinued == 0 {
		cur = nil
	}
	dropping := o.resync && h.flags&oggContinued != 0
	o.resync = false

	off := 0
	for _, lace := range h.segments {
		seg := body[off : off+int(lace)]
		off += int(lace)
		if !dropping {
			cur = append(cur, seg...)
		}
		if lace < 255 {
			if !dropping {
				o.packets = append(o.packets, cur)
			}
			cur = nil
			dropping = false
		}
	}
	if dropping {
		cur = nil
	}
	o.partial = cur
	return nil
}

func (o *oggReader) nextPacket() ([]byte, error) {
	for len(o.packets) == 0 {
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}
	p := o.packets[0]
	o.packets = o.packets[1:]
	return p, nil
}

// seekPage positions the reader on the first page at or after from whose
// granule reaches target. It returns the granule the page starts at.
func (o *oggReader) seekPage(from, target int64) (int64, error) {
	o.packets = nil
	o.partial = nil
	if _, err := o.r.Seek(from, io.SeekStart); err != nil {
		return 0, err
	}
	prev := int64(0)
	offset := from
	for {
		h, err := readOggPageHeader(o.r)
		if err != nil {
			return 0, err
		}
		if h.granule >= 0 && h.granule >= target {
			break
		}
		if h.granule >= 0 {
			prev = h.granule
		}
		offset, err = o.r.Seek(h.bodySize(), io.SeekCurrent)
		if err != nil {
			return 0, err
		}
	}
	if _, err := o.r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	o.resync = true
	return prev, nil
}

// lastGranule returns the granule of the final page, searching the tail of
// the stream.
func (o *oggReader) lastGranule(dataStart int64) (int64, error) {
	end, err := o.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	start := max(end-oggTailScan, dataStart)
	if _, err := o.r.Seek(start, io.SeekStart); err != nil {
		return 0, err
	}
	tail := make([]byte, end-start)
	if _, err := io.ReadFull(o.r, tail); err != nil {
		return 0, err
	}

	for i := bytes.LastIndex(tail, []byte("OggS")); i >= 0; i = bytes.LastIndex(tail[:i], []byte("OggS")) {
		if len(tail)-i < oggHeaderSize || tail[i+4] != 0 {
			continue
		}
		g := int64(binary.LittleEndian.Uint64(tail[i+6 : i+14])) //nolint:gosec // -1 marks pages without a packet end
		if g >= 0 {
			return g, nil
		}
	}
	return 0, nil
}

// oggCodec decodes the audio packets of one Ogg codec into interleaved PCM.
type oggCodec interface {
	headerPackets() int
	init(headers [][]byte) error
	sampleRate() int
	channels() int
	preSkip() int
	preroll() int
	decode(packet []byte) ([]float32, error)
	reset()
}

func detectOggCodec(first []byte) (oggCodec, error) {
	switch {
	case bytes.HasPrefix(first, []byte("OpusHead")):
		return newOpusCodec(first)
	case len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis":
		return newVorbisCodec(first)
	}
	return nil, errOggCodec
}

type opusCodec struct {
	dec  *opus.Decoder
	ch   int
	skip int
	pcm  []float32
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 || head[8] != 1 || head[9] == 0 {
		return nil, errOpusHead
	}
	ch := int(head[9])
	return &opusCodec{
		ch:   ch,
		skip: int(binary.LittleEndian.Uint16(head[10:12])),
		pcm:  make([]float32, opusMaxFrame*ch),
	}, nil
}

func (c *opusCodec) headerPackets() int { return 2 }
func (c *opusCodec) sampleRate() int    { return opusSampleRate }
func (c *opusCodec) channels() int      { return c.ch }
func (c *opusCodec) preSkip() int       { return c.skip }
func (c *opusCodec) preroll() int       { return opusPrerollSize }

// init ignores OpusTags; OpusHead was parsed on detection.
func (c *opusCodec) init([][]byte) error {
	dec, err := opus.NewDecoder(opusSampleRate, c.ch)
	if err != nil {
		return err
	}
	c.dec = dec
	return nil
}

func (c *opusCodec) decode(packet []byte) ([]float32, error) {
	n, err := c.dec.DecodeFloat32(packet, c.pcm)
	if err != nil {
		return nil, err
	}
	return c.pcm[:n*c.ch], nil
}

// Opus recovers on its own after the pre-roll.
func (c *opusCodec) reset() {}

type vorbisCodec struct {
	dec  vorbis.Decoder
	ch   int
	rate int
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 || ident[11] == 0 {
		return nil, errVorbisIdent
	}
	return &vorbisCodec{
		ch:   int(ident[11]),
		rate: int(binary.LittleEndian.Uint32(ident[12:16])),
	}, nil
}

func (c *vorbisCodec) headerPackets() int { return 3 }
func (c *vorbisCodec) sampleRate() int    { return c.rate }
func (c *vorbisCodec) channels() int      { return c.ch }
func (c *vorbisCodec) preSkip() int       { return 0 }
func (c *vorbisCodec) preroll() int       { return 0 }

func (c *vorbisCodec) init(headers [][]byte) error {
	for _, h := range headers {
		if err := c.dec.ReadHeader(h); err != nil {
			return err
		}
	}
	return nil
}

func (c *vorbisCodec) decode(packet []byte) ([]float32, error) {
	return c.dec.Decode(packet)
}

func (c *vorbisCodec) reset() { c.dec.Clear() }

// oggStream plays Opus or Vorbis from an Ogg file. Positions are in output
// samples, which is the granule minus the codec pre-skip.
type oggStream struct {
	ogg       *oggReader
	codec     oggCodec
	closer    io.Closer
	dataStart int64
	length    int

	pcm  []float32
	pos  int
	skip int
	err  error
}

func decodeOgg(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ogg := &oggReader{r: rc}
	first, err := ogg.nextPacket()
	if err != nil {
		return nil, beep.Format{}, err
	}
	codec, err := detectOggCodec(first)
	if err != nil {
		return nil, beep.Format{}, err
	}

	headers := [][]byte{first}
	for len(headers) < codec.headerPackets() {
		p, err := ogg.nextPacket()
		if err != nil {
			return nil, beep.Format{}, errors.Join(errOggHeaders, err)
		}
		headers = append(headers, p)
	}
	if err := codec.init(headers); err != nil {
		return nil, beep.Format{}, err
	}

	// Audio starts on a fresh page once the headers are read
	dataStart, err := rc.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, beep.Format{}, err
	}
	last, err := ogg.lastGranule(dataStart)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if _, err := rc.Seek(dataStart, io.SeekStart); err != nil {
		return nil, beep.Format{}, err
	}

	s := &oggStream{
		ogg:       ogg,
		codec:     codec,
		closer:    rc,
		dataStart: dataStart,
		length:    max(int(last)-codec.preSkip(), 0),
		skip:      codec.preSkip(),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.sampleRate()),
		NumChannels: min(codec.channels(), 2),
		Precision:   2,
	}
	return s, format, nil
}

func (s *oggStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	ch := s.codec.channels()
	n := 0
	for n < len(samples) {
		if len(s.pcm) == 0 {
			packet, err := s.ogg.nextPacket()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					s.err = err
				}
				return n, n > 0
			}
			pcm, err := s.codec.decode(packet)
			if err != nil {
				continue // corrupt packet
			}
			s.pcm = pcm
		}

		for n < len(samples) && len(s.pcm) >= ch {
			if s.skip > 0 {
				s.skip--
				s.pcm = s.pcm[ch:]
				continue
			}
			left := float64(s.pcm[0])
			right := left
			if ch > 1 {
				right = float64(s.pcm[1])
			}
			samples[n] = [2]float64{left, right}
			s.pcm = s.pcm[ch:]
			s.pos++
			n++
		}
	}
	return n, true
}

func (s *oggStream) Err() error    { return s.err }
func (s *oggStream) Len() int      { return s.length }
func (s *oggStream) Position() int { return s.pos }

func (s *oggStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	target := int64(p + s.codec.preSkip())
	from := max(target-int64(s.codec.preroll()), 0)

	start, err := s.ogg.seekPage(s.dataStart, from)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return err
		}
		// Past the last page: park at the end
		start = target
	}
	s.codec.reset()
	s.pcm = nil
	s.skip = int(target - start)
	s.pos = p
	s.err = nil
	return nil
}

func (s *oggStream) Close() error {
	return s.closer.Close()
}
