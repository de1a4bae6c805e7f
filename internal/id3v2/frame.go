package id3v2

import (
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// frameHeaderSize returns the on-disk frame header size for the given
// major version: 6 bytes (3 id + 3 size) for v2.2, 10 bytes (4 id + 4
// size + 2 flags) for v2.3/v2.4.
func frameHeaderSize(major int) int {
	if major == 2 {
		return 6
	}
	return 10
}

// rawFrame is one frame as read off the wire, before encoding-aware
// payload interpretation.
type rawFrame struct {
	ID      string
	Flags   uint16 // 0 for v2.2
	Payload []byte
}

// ReadFrames consumes frames from body (already unsynchronised if the
// tag-level flag was set) until it runs out of room or hits padding
// (a frame id of all zero bytes, which v2.3/v2.4 writers use to mark
// the start of the trailing padding zone).
func ReadFrames(body []byte, major int) ([]rawFrame, error) {
	hdrSize := frameHeaderSize(major)
	var frames []rawFrame
	pos := 0
	for pos+hdrSize <= len(body) {
		idLen := 3
		if major != 2 {
			idLen = 4
		}
		id := string(body[pos : pos+idLen])
		if isAllZero(body[pos : pos+idLen]) {
			break // padding zone reached
		}
		pos += idLen

		var size uint32
		if major == 2 {
			size = uint32(body[pos])<<16 | uint32(body[pos+1])<<8 | uint32(body[pos+2])
			pos += 3
		} else if major == 4 {
			var b [4]byte
			copy(b[:], body[pos:pos+4])
			var err error
			size, err = ioprim.ReadSynchsafe32(b)
			if err != nil {
				return nil, err
			}
			pos += 4
		} else { // v2.3: plain big-endian 32-bit size
			size = uint32(body[pos])<<24 | uint32(body[pos+1])<<16 | uint32(body[pos+2])<<8 | uint32(body[pos+3])
			pos += 4
		}

		var flags uint16
		if major != 2 {
			flags = uint16(body[pos])<<8 | uint16(body[pos+1])
			pos += 2
		}

		if pos+int(size) > len(body) {
			return nil, model.TruncatedDataf("id3v2.ReadFrames", "frame %q declares size %d beyond tag body", id, size)
		}
		payload := body[pos : pos+int(size)]
		pos += int(size)

		frame := rawFrame{ID: id, Flags: flags, Payload: payload}
		if flags&frameFlagUnsynchronised(major) != 0 {
			frame.Payload = ioprim.DecodeUnsynchronisation(frame.Payload)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// frameFlagUnsynchronised returns the frame-status-flags bit meaning
// "this frame is unsynchronised" — only meaningful in v2.4, where
// unsynchronisation can be scoped per frame instead of tag-wide.
func frameFlagUnsynchronised(major int) uint16 {
	if major == 4 {
		return 1 << 1
	}
	return 0
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// WriteFrame serialises one frame in the given major version's header
// shape. payload must already be unsynchronised by the caller if
// per-frame unsynchronisation applies.
func WriteFrame(w *ioprim.Writer, major int, id string, flags uint16, payload []byte) error {
	if major == 2 {
		if len(id) != 3 {
			return model.InvalidDataf("id3v2.WriteFrame", "v2.2 frame id %q must be 3 bytes", id)
		}
		w.FixedString(id)
		w.BU24(uint32(len(payload)))
		w.Write(payload)
		return nil
	}
	if len(id) != 4 {
		return model.InvalidDataf("id3v2.WriteFrame", "v2.3/2.4 frame id %q must be 4 bytes", id)
	}
	w.FixedString(id)
	if major == 4 {
		if len(payload) > ioprim.MaxSynchsafe32 {
			return model.InvalidDataf("id3v2.WriteFrame", "frame %q payload too large for synchsafe size", id)
		}
		sz := ioprim.WriteSynchsafe32(uint32(len(payload)))
		w.Write(sz[:])
	} else {
		w.BU32(uint32(len(payload)))
	}
	w.BU16(flags)
	w.Write(payload)
	return nil
}
