package mp3

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/mpegaudio"
)

const maxFrameScanWindow = 64 * 1024

// scanFirstFrame looks for the first valid MPEG audio frame header at
// or after start (immediately after any ID3v2 header, ,
// tolerating a short run of non-audio padding before it.
func scanFirstFrame(r io.ReadSeeker, start int64) (int64, mpegaudio.Header, error) {
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, mpegaudio.Header{}, model.IoErrorf("mp3.scanFirstFrame", err, "seek to scan start")
	}
	buf := make([]byte, maxFrameScanWindow)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, mpegaudio.Header{}, model.IoErrorf("mp3.scanFirstFrame", err, "read scan window")
	}
	buf = buf[:n]

	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}
		var hb [4]byte
		copy(hb[:], buf[i:i+4])
		h, err := mpegaudio.ParseHeader(hb)
		if err != nil {
			continue
		}
		return start + int64(i), h, nil
	}
	return 0, mpegaudio.Header{}, model.NewError(model.KindNoDataFound, "mp3.scanFirstFrame", "no valid MPEG audio frame found", nil)
}
