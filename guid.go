package blivet

import (
	"github.com/rekby/gpt"
	uuid "github.com/satori/go.uuid"
)

// GUID is a 16 byte globally unique id, stored in the mixed endian byte
// order GPT uses on disk.
type GUID [16]byte

// GenGUID returns a new random GUID.
func GenGUID() GUID {
	return GUID(uuid.NewV4())
}

// String renders the GUID in the canonical dash separated hex form.
func (g GUID) String() string {
	return gpt.Guid(g).String()
}

// ParseGUID parses the canonical dash separated hex form of a GUID.
func ParseGUID(sguid string) (GUID, error) {
	return gpt.StringToGuid(sguid)
}
