package mp4

// Atom ids used by the container/track/tag layers, packed the same way
// element.Node.ID packs every other format's identifier.
var (
	idFtyp = fourCCToID("ftyp")
	idMoov = fourCCToID("moov")
	idMvhd = fourCCToID("mvhd")
	idTrak = fourCCToID("trak")
	idTkhd = fourCCToID("tkhd")
	idMdia = fourCCToID("mdia")
	idMdhd = fourCCToID("mdhd")
	idHdlr = fourCCToID("hdlr")
	idMinf = fourCCToID("minf")
	idStbl = fourCCToID("stbl")
	idStsd = fourCCToID("stsd")
	idStco = fourCCToID("stco")
	idCo64 = fourCCToID("co64")
	idUdta = fourCCToID("udta")
	idMeta = fourCCToID("meta")
	idIlst = fourCCToID("ilst")
	idFree = fourCCToID("free")
	idSkip = fourCCToID("skip")
	idMdat = fourCCToID("mdat")
	idData = fourCCToID("data")
	idMean = fourCCToID("mean")
	idName = fourCCToID("name")
	idCustom = fourCCToID("----")

	// Sample-entry FourCCs.
	idMp4a = fourCCToID("mp4a")
	idAlac = fourCCToID("alac")
	idAc3  = fourCCToID("ac-3")
	idEc3  = fourCCToID("ec-3")
	idAvc1 = fourCCToID("avc1")
	idHev1 = fourCCToID("hev1")
	idHvc1 = fourCCToID("hvc1")
	idAv01 = fourCCToID("av01")
	idVp09 = fourCCToID("vp09")

	// Well-known iTunes metadata item FourCCs. The copyright-sign-prefixed ones use the
	// literal 0xA9 byte, not a printable ASCII character.
	idTitle   = fourCCToID("\xa9nam")
	idArtist  = fourCCToID("\xa9ART")
	idAlbum   = fourCCToID("\xa9alb")
	idDay     = fourCCToID("\xa9day")
	idComment = fourCCToID("\xa9cmt")
	idGenre   = fourCCToID("\xa9gen")
	idWriter  = fourCCToID("\xa9wrt")
	idTool    = fourCCToID("\xa9too")
	idGroup   = fourCCToID("\xa9grp")
	idLyrics  = fourCCToID("\xa9lyr")
	idAlbumArtist = fourCCToID("aART")
	idTrackNum    = fourCCToID("trkn")
	idDiskNum     = fourCCToID("disk")
	idCompilation = fourCCToID("cpil")
	idTempo       = fourCCToID("tmpo")
	idGaplessPlay = fourCCToID("pgap")
	idCover       = fourCCToID("covr")
)
