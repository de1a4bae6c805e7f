package wav

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// infoFieldIDs maps RIFF LIST/INFO subchunk FourCCs to the library's
// canonical TagField ids, reusing the same ids ID3v1/ID3v2 use so a
// caller treats every container's title/artist/album the same way
//.
var infoFieldIDs = map[string]string{
	"INAM": "TIT2",
	"IART": "TPE1",
	"IPRD": "TALB",
	"ICRD": "TYER",
	"IGNR": "TCON",
	"ICMT": "COMM",
	"ITRK": "TRCK",
}

var fieldToInfoID = func() map[string]string {
	m := make(map[string]string, len(infoFieldIDs))
	for k, v := range infoFieldIDs {
		m[v] = k
	}
	return m
}()

// infoFieldOrder fixes a stable subchunk order on write, independent of
// map iteration order.
var infoFieldOrder = []string{"TIT2", "TPE1", "TALB", "TYER", "TCON", "TRCK", "COMM"}

// parseListInfo decodes a LIST chunk's payload (the 4-byte "INFO" type
// plus its subchunks) into the uniform model.Tag.
func parseListInfo(payload []byte) (*model.Tag, error) {
	rd := ioprim.NewReader(&byteSeeker{b: payload})
	form, err := rd.FixedString(4)
	if err != nil {
		return nil, err
	}
	if form != "INFO" {
		return nil, nil
	}
	tag := &model.Tag{Format: model.TagFormatRIFFInfo, Target: model.FileTarget}
	for {
		id, err := rd.FixedString(4)
		if err != nil {
			break
		}
		size, err := rd.LU32()
		if err != nil {
			break
		}
		raw, err := rd.ReadBytes(int(size))
		if err != nil {
			break
		}
		if size&1 == 1 {
			if _, err := rd.Seek(1, io.SeekCurrent); err != nil {
				break
			}
		}
		canonical, ok := infoFieldIDs[id]
		if !ok {
			continue
		}
		value := trimNulPadded(raw)
		if value == "" {
			continue
		}
		tag.Fields = append(tag.Fields, model.TagField{ID: canonical, Value: model.TextValue(value)})
	}
	if len(tag.Fields) == 0 {
		return nil, nil
	}
	return tag, nil
}

// encodeListInfo is the inverse of parseListInfo: it emits the LIST
// chunk's full bytes (header included) for tag's file-scoped fields
// that have an INFO mapping, in a fixed field order. Returns nil if no
// mappable field has a value.
func encodeListInfo(tag *model.Tag) []byte {
	if tag == nil {
		return nil
	}
	w := ioprim.NewWriter()
	w.FixedString("INFO")
	wrote := false
	for _, canonical := range infoFieldOrder {
		f, ok := tag.Field(canonical)
		if !ok {
			continue
		}
		value := f.Value.First()
		if value == "" {
			continue
		}
		infoID := fieldToInfoID[canonical]
		entry := append([]byte(value), 0)
		w.FixedString(infoID)
		w.LU32(uint32(len(entry)))
		w.Write(entry)
		if len(entry)&1 == 1 {
			w.U8(0)
		}
		wrote = true
	}
	if !wrote {
		return nil
	}
	payload := w.Bytes()
	out := ioprim.NewWriter()
	out.FixedString("LIST")
	out.LU32(uint32(len(payload)))
	out.Write(payload)
	if len(payload)&1 == 1 {
		out.U8(0)
	}
	return out.Bytes()
}

func trimNulPadded(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0x00 {
		end--
	}
	return string(b[:end])
}

// byteSeeker adapts a plain []byte to io.ReadSeeker for ioprim.Reader,
// since LIST/INFO parsing runs over an already-extracted payload slice
// rather than the live file stream.
type byteSeeker struct {
	b   []byte
	pos int64
}

func (s *byteSeeker) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *byteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.b))
	}
	s.pos = base + offset
	return s.pos, nil
}
