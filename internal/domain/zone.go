package domain

import (
	"fmt"
	"strings"
	"time"
)

// Zone is one of the four ordered refinement tiers of the lake.
type Zone string

const (
	ZoneRaw    Zone = "raw"
	ZoneBronze Zone = "bronze"
	ZoneSilver Zone = "silver"
	ZoneGold   Zone = "gold"
)

// Zones lists every zone in promotion order.
var Zones = []Zone{ZoneRaw, ZoneBronze, ZoneSilver, ZoneGold}

// ParseZone resolves a zone name case-insensitively.
func ParseZone(s string) (Zone, error) {
	z := Zone(strings.ToLower(strings.TrimSpace(s)))
	if !z.Valid() {
		return "", ErrValidation("unknown zone %q: must be one of raw, bronze, silver, gold", s)
	}
	return z, nil
}

// Valid reports whether z is a known zone.
func (z Zone) Valid() bool {
	return z.Index() >= 0
}

// Index returns the position of z in promotion order, or -1.
func (z Zone) Index() int {
	for i, known := range Zones {
		if z == known {
			return i
		}
	}
	return -1
}

// Next returns the zone one promotion step forward. ok is false for gold
// and for unknown zones.
func (z Zone) Next() (next Zone, ok bool) {
	i := z.Index()
	if i < 0 || i == len(Zones)-1 {
		return "", false
	}
	return Zones[i+1], true
}

// Upper returns the display form used in catalog entries (e.g. "BRONZE").
func (z Zone) Upper() string {
	return strings.ToUpper(string(z))
}

// TableRef identifies a table by zone and name.
type TableRef struct {
	Zone Zone   `json:"zone"`
	Name string `json:"name"`
}

// String returns the qualified "zone/name" form used in lineage.
func (r TableRef) String() string {
	return string(r.Zone) + "/" + r.Name
}

// ParseTableRef parses a qualified "zone/name" reference.
func ParseTableRef(s string) (TableRef, error) {
	zone, name, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return TableRef{}, ErrValidation("table reference %q must have the form zone/name", s)
	}
	z, err := ParseZone(zone)
	if err != nil {
		return TableRef{}, err
	}
	return TableRef{Zone: z, Name: name}, nil
}

// DerivedName names a table produced in zone from base at the given time,
// e.g. "silver_products_143005".
func DerivedName(zone Zone, base string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s", zone, base, at.Format("150405"))
}

// BaseName strips the zone prefix a derived name carries, so promoting
// "bronze_products_143005" does not stack zone prefixes.
func BaseName(zone Zone, name string) string {
	if base, ok := strings.CutPrefix(name, string(zone)+"_"); ok && base != "" {
		return base
	}
	return name
}
