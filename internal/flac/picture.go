package flac

import (
	"bytes"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// decodePicture parses a PICTURE block / METADATA_BLOCK_PICTURE payload
// (the same layout is base64-wrapped inside a Vorbis comment field by
// Ogg Vorbis/Opus writers): type, MIME length + MIME, description
// length + description, width/height/depth/colors, data length + data.
func decodePicture(payload []byte) (model.Picture, error) {
	rd := ioprim.NewReader(bytes.NewReader(payload))
	typeCode, err := rd.BU32()
	if err != nil {
		return model.Picture{}, err
	}
	mimeLen, err := rd.BU32()
	if err != nil {
		return model.Picture{}, err
	}
	mimeBytes, err := rd.ReadBytes(int(mimeLen))
	if err != nil {
		return model.Picture{}, err
	}
	descLen, err := rd.BU32()
	if err != nil {
		return model.Picture{}, err
	}
	descBytes, err := rd.ReadBytes(int(descLen))
	if err != nil {
		return model.Picture{}, err
	}
	// width, height, colorDepth, numColors: not modelled in
	// model.Picture; skip.
	if _, err := rd.BU32(); err != nil {
		return model.Picture{}, err
	}
	if _, err := rd.BU32(); err != nil {
		return model.Picture{}, err
	}
	if _, err := rd.BU32(); err != nil {
		return model.Picture{}, err
	}
	if _, err := rd.BU32(); err != nil {
		return model.Picture{}, err
	}
	dataLen, err := rd.BU32()
	if err != nil {
		return model.Picture{}, err
	}
	data, err := rd.ReadBytes(int(dataLen))
	if err != nil {
		return model.Picture{}, err
	}
	return model.Picture{
		MimeType:    string(mimeBytes),
		Description: string(descBytes),
		TypeCode:    byte(typeCode),
		Data:        data,
	}, nil
}

// encodePicture serialises p into a PICTURE block payload. Width,
// height, color depth and palette size are left at 0 ("unknown"),
// which every real-world reader treats as a valid absent hint.
func encodePicture(p model.Picture) []byte {
	w := ioprim.NewWriter()
	w.BU32(uint32(p.TypeCode))
	w.BU32(uint32(len(p.MimeType)))
	w.FixedString(p.MimeType)
	w.BU32(uint32(len(p.Description)))
	w.FixedString(p.Description)
	w.BU32(0) // width
	w.BU32(0) // height
	w.BU32(0) // color depth
	w.BU32(0) // number of colors (0 = non-indexed)
	w.BU32(uint32(len(p.Data)))
	w.Write(p.Data)
	return w.Bytes()
}
