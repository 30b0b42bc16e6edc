package services

import (
	"strconv"

	"github.com/google/uuid"
)

// DefaultCabinetPrefix is used when no prefix is configured.
const DefaultCabinetPrefix = "K"

// Cabinet derives the display-only room label for an appointment. The number
// is 100 + b%900 where b is the first byte of the id in mixed-endian GUID
// layout, so labels match those issued before ids moved to this service.
// Different ids may share a cabinet.
func Cabinet(prefix string, id uuid.UUID) string {
	if prefix == "" {
		prefix = DefaultCabinetPrefix
	}
	number := 100 + int(guidFirstByte(id))%900
	return prefix + "-" + strconv.Itoa(number)
}

// guidFirstByte returns byte 0 of the GUID byte layout, whose first group is
// little-endian.
func guidFirstByte(id uuid.UUID) byte {
	return id[3]
}
