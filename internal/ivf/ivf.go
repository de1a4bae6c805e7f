// Package ivf implements a thin IVF container reader: the 32-byte file header carrying the video
// codec FourCC, frame dimensions, and timebase, used for VP8/VP9/AV1
// elementary streams that arrive outside a full MP4/Matroska wrapper.
package ivf

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

const magic = "DKIF"

// Header is the parsed 32-byte IVF file header.
type Header struct {
	CodecFourCC   string
	Width         uint16
	Height        uint16
	TimebaseNum   uint32
	TimebaseDen   uint32
	FrameCount    uint32
}

// ReadHeader parses the IVF header at the stream's current position.
func ReadHeader(rd *ioprim.Reader) (Header, error) {
	sig, err := rd.FixedString(4)
	if err != nil {
		return Header{}, err
	}
	if sig != magic {
		return Header{}, model.InvalidDataf("ivf.ReadHeader", "missing DKIF magic")
	}
	if _, err := rd.LU16(); err != nil { // header version, unused
		return Header{}, err
	}
	headerLen, err := rd.LU16()
	if err != nil {
		return Header{}, err
	}
	fourcc, err := rd.FixedString(4)
	if err != nil {
		return Header{}, err
	}
	width, err := rd.LU16()
	if err != nil {
		return Header{}, err
	}
	height, err := rd.LU16()
	if err != nil {
		return Header{}, err
	}
	tbNum, err := rd.LU32()
	if err != nil {
		return Header{}, err
	}
	tbDen, err := rd.LU32()
	if err != nil {
		return Header{}, err
	}
	frameCount, err := rd.LU32()
	if err != nil {
		return Header{}, err
	}
	if _, err := rd.LU32(); err != nil { // reserved
		return Header{}, err
	}
	if int(headerLen) > 32 {
		if _, err := rd.ReadBytes(int(headerLen) - 32); err != nil {
			return Header{}, err
		}
	}
	return Header{
		CodecFourCC: fourcc, Width: width, Height: height,
		TimebaseNum: tbNum, TimebaseDen: tbDen, FrameCount: frameCount,
	}, nil
}

func codecFamily(fourcc string) model.CodecFamily {
	switch fourcc {
	case "VP80":
		return model.CodecUnknown // VP8 has no dedicated family in model.CodecFamily
	case "VP90":
		return model.CodecVP9
	case "AV01":
		return model.CodecAV1
	default:
		return model.CodecUnknown
	}
}

// ToTrack builds the uniform Track from an IVF header.
func ToTrack(h Header) *model.Track {
	t := &model.Track{
		Media:         model.MediaVideo,
		Format:        model.FormatDescriptor{Family: codecFamily(h.CodecFourCC), Subtype: h.CodecFourCC},
		DisplayWidth:  int(h.Width),
		DisplayHeight: int(h.Height),
	}
	if h.TimebaseDen > 0 {
		t.FPS = float64(h.TimebaseDen) / float64(h.TimebaseNum)
	}
	return t
}

// Parse reads the 32-byte IVF header and returns the uniform
// Container. IVF carries no tag mechanism of its own, so the returned
// Container has no Backing.
func Parse(r io.ReadSeeker, diag *model.Diagnostics) (*model.Container, error) {
	h, err := ReadHeader(ioprim.NewReader(r))
	if err != nil {
		return nil, err
	}
	c := model.NewContainer(model.FormatIVF, nil, r)
	c.Tracks = append(c.Tracks, ToTrack(h))
	return c, nil
}
