package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAndroidVersion = errors.New("unknow android version")
)

// AndroidVersion is the minimum supported OS of a store app, encoded the way
// the management API names it ("4_0", "4_0_3", "11_0", ...).
type AndroidVersion string

const (
	AndroidVersionNone  AndroidVersion = ""
	AndroidVersionV4_0  AndroidVersion = "4_0"
	AndroidVersionV403  AndroidVersion = "4_0_3"
	AndroidVersionV4_1  AndroidVersion = "4_1"
	AndroidVersionV4_2  AndroidVersion = "4_2"
	AndroidVersionV4_3  AndroidVersion = "4_3"
	AndroidVersionV4_4  AndroidVersion = "4_4"
	AndroidVersionV5_0  AndroidVersion = "5_0"
	AndroidVersionV5_1  AndroidVersion = "5_1"
	AndroidVersionV6_0  AndroidVersion = "6_0"
	AndroidVersionV7_0  AndroidVersion = "7_0"
	AndroidVersionV7_1  AndroidVersion = "7_1"
	AndroidVersionV8_0  AndroidVersion = "8_0"
	AndroidVersionV8_1  AndroidVersion = "8_1"
	AndroidVersionV9_0  AndroidVersion = "9_0"
	AndroidVersionV10_0 AndroidVersion = "10_0"
	AndroidVersionV11_0 AndroidVersion = "11_0"
)

func ParseAndroidVersion(s string) (d AndroidVersion, e error) {
	dataTypes := map[AndroidVersion]struct{}{
		AndroidVersionNone:  {},
		AndroidVersionV4_0:  {},
		AndroidVersionV403:  {},
		AndroidVersionV4_1:  {},
		AndroidVersionV4_2:  {},
		AndroidVersionV4_3:  {},
		AndroidVersionV4_4:  {},
		AndroidVersionV5_0:  {},
		AndroidVersionV5_1:  {},
		AndroidVersionV6_0:  {},
		AndroidVersionV7_0:  {},
		AndroidVersionV7_1:  {},
		AndroidVersionV8_0:  {},
		AndroidVersionV8_1:  {},
		AndroidVersionV9_0:  {},
		AndroidVersionV10_0: {},
		AndroidVersionV11_0: {},
	}

	dat := AndroidVersion(s)
	_, ok := dataTypes[dat]
	if !ok {
		return d, fmt.Errorf("cannot parse:[%s] as android version: %w", s, ErrInvalidAndroidVersion)
	}
	return dat, nil
}

// FlagName is the wire name of the one-of-N version selector flag,
// e.g. "4_0" -> "v4_0".
func (v AndroidVersion) FlagName() string {
	return "v" + string(v)
}

// Record is one row of the input file: the metadata needed to register a
// store-distributed app in the tenant. Immutable once parsed.
type Record struct {
	Name                  string
	URL                   string
	Publisher             string
	Description           string
	MinimumAndroidVersion AndroidVersion
	IconPath              string
}
