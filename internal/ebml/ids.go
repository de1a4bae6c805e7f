// Package ebml implements RFC 8794 variable-length element framing:
// the id/size VINT pair, the master-vs-leaf element table,
// and the element.HeaderReader adapter that lets the generic element
// tree (internal/element) traverse EBML the same way it traverses
// ISO-BMFF. Grounded on luispater-matroska-go/ebml.go's element-id
// constant block (the richest EBML id table in the pack) and its
// EBMLReader.ReadVInt/ReadElement shape; pixelbender-go-matroska/ebml
// contributed the reflect-based decoder idea, not used here since the
// tag model needs explicit per-field control.
package ebml

// Element IDs, marker bit included. Only the subset this library's Tracks/Tags/Chapters/
// Attachments/SeekHead handling needs is listed; anything else is
// preserved as an opaque leaf.
const (
	IDEBMLHeader             = 0x1A45DFA3
	IDEBMLVersion            = 0x4286
	IDEBMLReadVersion        = 0x42F7
	IDEBMLMaxIDLength        = 0x42F2
	IDEBMLMaxSizeLength      = 0x42F3
	IDEBMLDocType            = 0x4282
	IDEBMLDocTypeVersion     = 0x4287
	IDEBMLDocTypeReadVersion = 0x4285

	IDSegment = 0x18538067

	IDSeekHead = 0x114D9B74
	IDSeek     = 0x4DBB
	IDSeekID   = 0x53AB
	IDSeekPos  = 0x53AC

	IDInfo           = 0x1549A966
	IDTimestampScale = 0x2AD7B1
	IDDuration       = 0x4489
	IDTitle          = 0x7BA9
	IDMuxingApp      = 0x4D80
	IDWritingApp     = 0x5741

	IDTracks      = 0x1654AE6B
	IDTrackEntry  = 0xAE
	IDTrackNumber = 0xD7
	IDTrackUID    = 0x73C5
	IDTrackType   = 0x83
	IDTrackName   = 0x536E
	IDLanguage    = 0x22B59C
	IDCodecID     = 0x86
	IDCodecPriv   = 0x63A2
	IDCodecName   = 0x258688
	IDFlagEnabled = 0xB9
	IDFlagDefault = 0x88
	IDFlagForced  = 0x55AA
	IDFlagLacing  = 0x9C
	IDDefaultDuration = 0x23E383
	IDVideo       = 0xE0
	IDAudio       = 0xE1
	IDContentEncodings = 0x6D80
	IDContentEncryption = 0x5035

	IDFlagInterlaced = 0x9A
	IDPixelWidth     = 0xB0
	IDPixelHeight    = 0xBA
	IDDisplayWidth   = 0x54B0
	IDDisplayHeight  = 0x54BA

	IDSamplingFrequency       = 0xB5
	IDOutputSamplingFrequency = 0x78B5
	IDChannels                = 0x9F
	IDBitDepth                = 0x6264

	IDCues               = 0x1C53BB6B
	IDCuePoint           = 0xBB
	IDCueTime            = 0xB3
	IDCueTrackPositions  = 0xB7
	IDCueTrack           = 0xF7
	IDCueClusterPosition = 0xF1

	IDChapters         = 0x1043A770
	IDEditionEntry     = 0x45B9
	IDEditionUID       = 0x45BC
	IDEditionFlagHidden  = 0x45BD
	IDEditionFlagDefault = 0x45DB
	IDEditionFlagOrdered = 0x45DD
	IDChapterAtom      = 0xB6
	IDChapterUID       = 0x73C4
	IDChapterTimeStart = 0x91
	IDChapterTimeEnd   = 0x92
	IDChapterFlagHidden = 0x98
	IDChapterFlagEnabled = 0x4598
	IDChapterDisplay   = 0x80
	IDChapString       = 0x85
	IDChapLanguage     = 0x437C

	IDTags             = 0x1254C367
	IDTag              = 0x7373
	IDTargets          = 0x63C0
	IDTargetTypeValue  = 0x68CA
	IDTargetType       = 0x63CA
	IDTagTrackUID      = 0x63C5
	IDTagEditionUID    = 0x63C9
	IDTagChapterUID    = 0x63C4
	IDTagAttachmentUID = 0x63C6
	IDSimpleTag        = 0x67C8
	IDTagName          = 0x45A3
	IDTagLanguage      = 0x447A
	IDTagDefault       = 0x4484
	IDTagString        = 0x4487
	IDTagBinary        = 0x4485

	IDAttachments      = 0x1941A469
	IDAttachedFile     = 0x61A7
	IDFileDescription  = 0x467E
	IDFileName         = 0x466E
	IDFileMimeType     = 0x4660
	IDFileData         = 0x465C
	IDFileUID          = 0x46AE

	// IDVoid is Matroska's padding element: reserved bytes a rewrite can
	// shrink or grow to absorb a size delta without moving anything else.
	IDVoid = 0xEC
	IDCRC32 = 0xBF

	IDCluster     = 0x1F43B675
	IDTimestamp   = 0xE7
	IDSimpleBlock = 0xA3
	IDBlockGroup  = 0xA0
	IDBlock       = 0xA1
)

// masterElements lists every element id whose payload is itself a
// sequence of child elements, the EBML
// analogue of mp4.containerAtoms.
var masterElements = map[uint64]bool{
	IDEBMLHeader: true,
	IDSegment:    true,
	IDSeekHead:   true, IDSeek: true,
	IDInfo: true,
	IDTracks: true, IDTrackEntry: true, IDVideo: true, IDAudio: true,
	IDContentEncodings: true, IDContentEncryption: true,
	IDCues: true, IDCuePoint: true, IDCueTrackPositions: true,
	IDChapters: true, IDEditionEntry: true, IDChapterAtom: true, IDChapterDisplay: true,
	IDTags: true, IDTag: true, IDTargets: true, IDSimpleTag: true,
	IDAttachments: true, IDAttachedFile: true,
	IDCluster: true, IDBlockGroup: true,
}

// IsMaster reports whether id's payload is a sequence of child elements
// rather than a scalar/binary leaf.
func IsMaster(id uint64) bool { return masterElements[id] }
