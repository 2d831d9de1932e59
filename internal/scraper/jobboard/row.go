package jobboard

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	FieldTitle       = "title"
	FieldCompany     = "company"
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldURL         = "job_url"
	FieldDatePosted  = "date_posted"
)

// Row is one raw upstream record, every value a string.
type Row map[string]string

var missingValues = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"<na>": true,
	"nat":  true,
}

// Clean returns a copy with NaN-like and blank values emptied and the rest
// trimmed and NFC normalized.
func (r Row) Clean() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cleanValue(v)
	}
	return out
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if missingValues[strings.ToLower(v)] {
		return ""
	}
	return norm.NFC.String(v)
}
