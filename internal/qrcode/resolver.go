// Package qrcode turns scanned QR payloads into a (venue, table)
// reference and generates the canonical printable form. Resolution is
// pure: no I/O, same input always yields the same output.
package qrcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// TableRef identifies a table within a venue by the customer-facing
// slug and code, not by storage ids.
type TableRef struct {
	VenueSlug string
	TableCode string
}

// ErrUnrecognized reports a payload that matches none of the supported
// formats.
var ErrUnrecognized = errors.New("unrecognized code format")

// Supported formats, tried in this order:
//
//	https://host/r?venue=V&table=T   (also short keys r / t)
//	{"venue":"V","table":"T"}
//	V:T
//	V#T
//	V|T
//	venue=V&table=T                  (bare query, also r / t)
func Resolve(code string) (TableRef, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return TableRef{}, ErrUnrecognized
	}

	if strings.HasPrefix(code, "http://") || strings.HasPrefix(code, "https://") {
		u, err := url.Parse(code)
		if err != nil {
			return TableRef{}, ErrUnrecognized
		}
		return fromQuery(u.Query())
	}

	if strings.HasPrefix(code, "{") {
		var payload struct {
			Venue string `json:"venue"`
			Table string `json:"table"`
		}
		if err := json.Unmarshal([]byte(code), &payload); err != nil {
			return TableRef{}, ErrUnrecognized
		}
		return newRef(payload.Venue, payload.Table)
	}

	for _, sep := range []string{":", "#", "|"} {
		if strings.Contains(code, sep) {
			parts := strings.SplitN(code, sep, 2)
			return newRef(parts[0], parts[1])
		}
	}

	if strings.Contains(code, "=") {
		values, err := url.ParseQuery(code)
		if err != nil {
			return TableRef{}, ErrUnrecognized
		}
		return fromQuery(values)
	}

	return TableRef{}, ErrUnrecognized
}

// Generate produces the canonical URL form for a table. It is the
// inverse of Resolve: Resolve(Generate(base, v, t)) yields (v, t).
func Generate(baseURL, venueSlug, tableCode string) string {
	return fmt.Sprintf("%s/r?venue=%s&table=%s",
		strings.TrimRight(baseURL, "/"),
		url.QueryEscape(venueSlug),
		url.QueryEscape(tableCode))
}

func fromQuery(values url.Values) (TableRef, error) {
	venue := values.Get("venue")
	if venue == "" {
		venue = values.Get("r")
	}
	table := values.Get("table")
	if table == "" {
		table = values.Get("t")
	}
	return newRef(venue, table)
}

func newRef(venue, table string) (TableRef, error) {
	venue = strings.TrimSpace(venue)
	table = strings.TrimSpace(table)
	if venue == "" || table == "" {
		return TableRef{}, ErrUnrecognized
	}
	return TableRef{VenueSlug: venue, TableCode: table}, nil
}
