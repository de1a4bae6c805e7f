// Package langtable loads the static ISO-639 language mapping 
// describes ("Auxiliary data... loaded at build time from a CSV
// resource") and exposes lookups used for reporting and for mapping
// legacy ID3 2-letter codes to the canonical 3-letter form.
package langtable

import (
	"encoding/csv"
	"strings"
	"sync"

	_ "embed"
)

//go:embed iso639.csv
var csvData string

type entry struct {
	iso6392 string
	iso6391 string
	name    string
}

var (
	once       sync.Once
	byISO6392  map[string]entry
	byISO6391  map[string]entry
)

func load() {
	r := csv.NewReader(strings.NewReader(csvData))
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		byISO6392 = map[string]entry{}
		byISO6391 = map[string]entry{}
		return
	}
	byISO6392 = make(map[string]entry, len(records))
	byISO6391 = make(map[string]entry, len(records))
	for _, rec := range records[1:] { // skip header
		if len(rec) < 3 {
			continue
		}
		e := entry{iso6392: rec[0], iso6391: rec[1], name: rec[2]}
		byISO6392[e.iso6392] = e
		if e.iso6391 != "" {
			byISO6391[e.iso6391] = e
		}
	}
}

// Name returns the English name for a 3-letter ISO-639-2 code, and
// whether it was found.
func Name(iso6392Code string) (string, bool) {
	once.Do(load)
	e, ok := byISO6392[strings.ToLower(iso6392Code)]
	return e.name, ok
}

// CanonicalFrom2Letter maps a legacy 2-letter ID3 language hint to the
// canonical 3-letter ISO-639-2 code, falling back to "und" (undetermined)
// when unknown.
func CanonicalFrom2Letter(iso6391Code string) string {
	once.Do(load)
	if e, ok := byISO6391[strings.ToLower(iso6391Code)]; ok {
		return e.iso6392
	}
	return "und"
}

// IsKnown3Letter reports whether code is a recognised 3-letter code.
func IsKnown3Letter(code string) bool {
	once.Do(load)
	_, ok := byISO6392[strings.ToLower(code)]
	return ok
}
