// Package adts implements a thin ADTS (Audio Data Transport Stream)
// AAC frame header reader, sufficient to derive sample rate, channel
// count, and frame length for AAC elementary streams. No retrieved
// reference repo parses ADTS directly; the 7/9-byte header layout here
// follows ISO/IEC 13818-7 directly, the same "derive technical
// parameters from a fixed-layout header" pattern internal/mpegaudio and
// internal/wav already apply.
package adts

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/model"
)

// sampleRateTable maps the 4-bit sampling-frequency index to Hz;
// indices 13..15 are reserved/forbidden.
var sampleRateTable = [16]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

// Header is a parsed 7-byte (or 9-byte with CRC) ADTS frame header.
type Header struct {
	ProfileObjectType int
	SampleRate        int
	ChannelCount      int
	FrameLength       int // header + AAC payload, bytes
	ProtectionAbsent  bool
}

// ParseHeader decodes an ADTS header from the first 7 bytes of frame.
func ParseHeader(frame []byte) (Header, error) {
	if len(frame) < 7 {
		return Header{}, model.TruncatedDataf("adts.ParseHeader", "frame shorter than 7-byte ADTS header")
	}
	if frame[0] != 0xFF || frame[1]&0xF0 != 0xF0 {
		return Header{}, model.InvalidDataf("adts.ParseHeader", "missing 12-bit ADTS sync word")
	}
	protectionAbsent := frame[1]&0x1 != 0
	profile := int(frame[2]>>6) + 1 // stored as profile-1
	sampleRateIdx := (frame[2] >> 2) & 0xF
	sampleRate := sampleRateTable[sampleRateIdx]
	channelCfg := ((frame[2] & 0x1) << 2) | (frame[3] >> 6)
	frameLen := (int(frame[3]&0x3) << 11) | (int(frame[4]) << 3) | (int(frame[5]) >> 5)

	return Header{
		ProfileObjectType: profile,
		SampleRate:        sampleRate,
		ChannelCount:      int(channelCfg),
		FrameLength:       frameLen,
		ProtectionAbsent:  protectionAbsent,
	}, nil
}

// HeaderSize returns the on-disk header size: 7 bytes, or 9 when a CRC
// follows (ProtectionAbsent false).
func (h Header) HeaderSize() int {
	if h.ProtectionAbsent {
		return 7
	}
	return 9
}

// ToTrack builds the uniform Track from a Header.
func ToTrack(h Header) *model.Track {
	return &model.Track{
		Media:      model.MediaAudio,
		Format:     model.FormatDescriptor{Family: model.CodecAAC, Subtype: "adts"},
		SampleRate: h.SampleRate,
		Channels:   h.ChannelCount,
	}
}

// Parse reads the first ADTS frame header and returns the uniform
// Container. ADTS has no tag mechanism of its own (an elementary AAC
// stream carries no metadata container the way MP4/Ogg do), so the
// returned Container has no Backing: ApplyChanges on it always fails,
// by design, the same way a caller handling a Non-goal format would.
func Parse(r io.ReadSeeker, diag *model.Diagnostics) (*model.Container, error) {
	buf := make([]byte, 9)
	n, err := io.ReadFull(r, buf)
	if err != nil && n < 7 {
		return nil, model.IoErrorf("adts.Parse", err, "read ADTS header")
	}
	h, err := ParseHeader(buf[:n])
	if err != nil {
		return nil, err
	}
	c := model.NewContainer(model.FormatADTS, nil, r)
	c.Tracks = append(c.Tracks, ToTrack(h))
	return c, nil
}
