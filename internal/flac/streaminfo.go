package flac

import (
	"github.com/cesargomez89/mediatags/internal/model"
)

// StreamInfo holds the decoded STREAMINFO technical parameters:
// sample rate (20 bits), channel count (3 bits + 1), bits per sample
// (5 bits + 1), total sample count (36 bits), and the stream's MD5
// signature.
type StreamInfo struct {
	MinBlockSize  uint16
	MaxBlockSize  uint16
	MinFrameSize  uint32
	MaxFrameSize  uint32
	SampleRate    uint32
	ChannelCount  uint8
	BitsPerSample uint8
	TotalSamples  uint64
	MD5           [16]byte
}

// ParseStreamInfo decodes a 34-byte STREAMINFO payload.
func ParseStreamInfo(payload []byte) (StreamInfo, error) {
	if len(payload) < 34 {
		return StreamInfo{}, model.TruncatedDataf("flac.ParseStreamInfo", "STREAMINFO payload %d bytes, want 34", len(payload))
	}
	si := StreamInfo{
		MinBlockSize: uint16(payload[0])<<8 | uint16(payload[1]),
		MaxBlockSize: uint16(payload[2])<<8 | uint16(payload[3]),
		MinFrameSize: uint32(payload[4])<<16 | uint32(payload[5])<<8 | uint32(payload[6]),
		MaxFrameSize: uint32(payload[7])<<16 | uint32(payload[8])<<8 | uint32(payload[9]),
	}
	// Bytes 10..17 pack: 20-bit sample rate, 3-bit (channels-1), 5-bit
	// (bits-per-sample-1), 36-bit total samples — a 64-bit bitfield.
	var packed uint64
	for i := 0; i < 8; i++ {
		packed = packed<<8 | uint64(payload[10+i])
	}
	si.SampleRate = uint32(packed >> 44)
	si.ChannelCount = uint8((packed>>41)&0x7) + 1
	si.BitsPerSample = uint8((packed>>36)&0x1F) + 1
	si.TotalSamples = packed & 0xFFFFFFFFF
	copy(si.MD5[:], payload[18:34])
	return si, nil
}

// EncodeStreamInfo is the inverse of ParseStreamInfo.
func EncodeStreamInfo(si StreamInfo) []byte {
	buf := make([]byte, 34)
	buf[0] = byte(si.MinBlockSize >> 8)
	buf[1] = byte(si.MinBlockSize)
	buf[2] = byte(si.MaxBlockSize >> 8)
	buf[3] = byte(si.MaxBlockSize)
	buf[4] = byte(si.MinFrameSize >> 16)
	buf[5] = byte(si.MinFrameSize >> 8)
	buf[6] = byte(si.MinFrameSize)
	buf[7] = byte(si.MaxFrameSize >> 16)
	buf[8] = byte(si.MaxFrameSize >> 8)
	buf[9] = byte(si.MaxFrameSize)

	var packed uint64
	packed |= uint64(si.SampleRate&0xFFFFF) << 44
	packed |= uint64((si.ChannelCount-1)&0x7) << 41
	packed |= uint64((si.BitsPerSample-1)&0x1F) << 36
	packed |= uint64(si.TotalSamples) & 0xFFFFFFFFF
	for i := 0; i < 8; i++ {
		buf[10+i] = byte(packed >> (56 - 8*i))
	}
	copy(buf[18:34], si.MD5[:])
	return buf
}

// DurationMs returns the stream duration in milliseconds implied by
// TotalSamples/SampleRate, or 0 if SampleRate is 0.
func (si StreamInfo) DurationMs() int64 {
	if si.SampleRate == 0 {
		return 0
	}
	return int64(si.TotalSamples) * 1000 / int64(si.SampleRate)
}

// ToTrack builds the library's uniform Track from a STREAMINFO.
func ToTrack(si StreamInfo) *model.Track {
	return &model.Track{
		Media:         model.MediaAudio,
		Format:        model.FormatDescriptor{Family: model.CodecFLAC},
		SampleRate:    int(si.SampleRate),
		Channels:      int(si.ChannelCount),
		BitDepth:      int(si.BitsPerSample),
		DurationMs:    si.DurationMs(),
		SampleCount:   si.TotalSamples,
	}
}
