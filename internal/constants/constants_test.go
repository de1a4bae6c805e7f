package constants

import "testing"

func TestMagic(t *testing.T) {
	magics := []string{MagicRIFF, MagicWAVE, MagicFLAC, MagicOggS, MagicID3, MagicID3v1, MagicVorbis, MagicOpusHd, MagicOpusTag}
	for _, m := range magics {
		if m == "" {
			t.Error("magic constant should not be empty")
		}
	}
}

func TestMimeTypes(t *testing.T) {
	types := []string{MimeTypeFLAC, MimeTypeMP3, MimeTypeMP4, MimeTypeOgg, MimeTypeWAV, MimeTypeJPEG, MimeTypePNG}
	for _, m := range types {
		if m == "" {
			t.Error("MIME type constant should not be empty")
		}
	}
}

func TestFileExtensions(t *testing.T) {
	extensions := []string{ExtFLAC, ExtMP3, ExtMP4, ExtM4A, ExtM4B, ExtOgg, ExtOpus, ExtWAV, ExtMKA, ExtMKV, ExtWebM}
	for _, ext := range extensions {
		if ext == "" || ext[0] != '.' {
			t.Errorf("file extension %q should start with '.'", ext)
		}
	}
}

func TestLimits(t *testing.T) {
	if DefaultMaxElementDepth <= 0 {
		t.Error("DefaultMaxElementDepth must be positive")
	}
	if DefaultMaxElementSize <= 0 {
		t.Error("DefaultMaxElementSize must be positive")
	}
	if ID3v1TagSize != 128 {
		t.Errorf("ID3v1TagSize = %d, want 128", ID3v1TagSize)
	}
	if ID3v2HeaderSize != 10 {
		t.Errorf("ID3v2HeaderSize = %d, want 10", ID3v2HeaderSize)
	}
	if FLACStreamInfoSize != 34 {
		t.Errorf("FLACStreamInfoSize = %d, want 34", FLACStreamInfoSize)
	}
	if OggPageHeaderSize != 27 {
		t.Errorf("OggPageHeaderSize = %d, want 27", OggPageHeaderSize)
	}
}
