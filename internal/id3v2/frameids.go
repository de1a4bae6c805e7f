package id3v2

// v22to24 maps legacy 3-letter v2.2 frame ids to their 4-letter v2.3/2.4
// equivalents. Only the common/text/picture/comment frames this library
// materialises into the tag model are listed; anything absent here is
// either unknown (preserved under its 3-letter id, unusable cross-
// version) or one of the lossy EQU/RVA frames dropped on upgrade since
// v2.4 has no equivalent.
var v22to24 = map[string]string{
	"TT2": "TIT2", "TP1": "TPE1", "TP2": "TPE2", "TAL": "TALB",
	"TYE": "TYER", "TRK": "TRCK", "TCO": "TCON", "TCM": "TCOM",
	"TEN": "TENC", "TLE": "TLEN", "TPA": "TPOS", "TBP": "TBPM",
	"TCR": "TCOP", "TPB": "TPUB", "TOA": "TOPE", "TOT": "TOAL",
	"COM": "COMM", "ULT": "USLT", "PIC": "APIC", "WXX": "WXXX",
	"TXX": "TXXX",
}

// v24to22 is the inverse of v22to24, for completeness (a writer that
// targets v2.2 from an in-memory model built against 2.3/2.4 ids).
var v24to22 = invert(v22to24)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// lossyOnUpgrade lists v2.2 frame ids that have no faithful v2.3/2.4
// equivalent): EQU (equalisation) and RVA
// (relative volume adjustment) changed their binary payload layout
// incompatibly between versions, so upgrading must drop them with a
// warning rather than attempt a lossy translation.
var lossyOnUpgrade = map[string]bool{
	"EQU": true,
	"RVA": true,
}

// CanonicalID returns the 4-letter (v2.3/2.4-style) frame id for a raw
// on-wire id of either width, and whether the mapping exists (4-letter
// ids map to themselves).
func CanonicalID(id string) (string, bool) {
	if len(id) == 4 {
		return id, true
	}
	if mapped, ok := v22to24[id]; ok {
		return mapped, true
	}
	return id, false
}

// ToVersionID converts a canonical 4-letter id to the on-wire id for
// major (3 letters for v2.2, unchanged otherwise).
func ToVersionID(id string, major int) string {
	if major != 2 {
		return id
	}
	if mapped, ok := v24to22[id]; ok {
		return mapped
	}
	if len(id) > 3 {
		return id[:3]
	}
	return id
}

// IsLossyOnUpgrade reports whether id (v2.2 form) cannot be represented
// in v2.3/2.4 and must be dropped with a diagnostic.
func IsLossyOnUpgrade(id string) bool {
	return lossyOnUpgrade[id]
}
