package blivet_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	blivet "github.com/ryanlerch/blivet"
)

var validLVTypes = map[string]blivet.LVType{
	"THICK":    blivet.THICK,
	"THIN":     blivet.THIN,
	"THINPOOL": blivet.THINPOOL,
}

func TestLVTypeString(t *testing.T) {
	for asStr, ltype := range validLVTypes {
		found := ltype.String()
		if found != asStr {
			t.Errorf("blivet.LVType(%d).String() found %s, expected %s",
				ltype, found, asStr)
		}
	}
}

func TestLVTypeJsonSerialize(t *testing.T) {
	for asStr, ltype := range validLVTypes {
		ltype := ltype

		jbytes, err := json.Marshal(&ltype)
		if err != nil {
			t.Errorf("Failed to marshal %#v: %s", ltype, err)
			continue
		}

		jstr := string(jbytes)
		if !strings.Contains(jstr, asStr) {
			t.Errorf("Did not find string ID '%s' in json: %s", asStr, jstr)
		}
	}
}

func TestLVTypeJsonUnSerialize(t *testing.T) {
	var found blivet.LVType

	for asStr, ltype := range validLVTypes {
		// "4" (no quotes) is valid json rep of int 4.  "string" is rep of string.
		validJsons := []string{fmt.Sprintf("%d", ltype), "\"" + asStr + "\""}
		for _, jsonBlob := range validJsons {
			err := json.Unmarshal([]byte(jsonBlob), &found)
			if err != nil {
				t.Errorf("Failed to unmarshal %s: %s", jsonBlob, err)
			} else if found != ltype {
				t.Errorf("Unserialized %s, got %d, expected %d", jsonBlob, found, ltype)
			}
		}
	}
}

func TestLVTypeJsonUnSerializeBad(t *testing.T) {
	var found blivet.LVType

	for _, jsonBlob := range []string{"\"FLAT\"", "[]", "true"} {
		if err := json.Unmarshal([]byte(jsonBlob), &found); err == nil {
			t.Errorf("Unmarshal of %s did not error", jsonBlob)
		}
	}
}

func TestLVJsonRoundTrip(t *testing.T) {
	lv := blivet.LV{
		Name:   "data0",
		Path:   "/dev/myvg0/data0",
		VGName: "myvg0",
		Size:   100 * blivet.Gibibyte,
		Type:   blivet.THIN,
		Pool:   "pool0",
		Active: true,
	}

	jbytes, err := json.Marshal(&lv)
	if err != nil {
		t.Fatalf("Failed to marshal %#v: %s", lv, err)
	}

	found := blivet.LV{}
	if err := json.Unmarshal(jbytes, &found); err != nil {
		t.Fatalf("Failed to unmarshal %s: %s", jbytes, err)
	}

	if found != lv {
		t.Errorf("Round trip got %#v, expected %#v", found, lv)
	}
}
