package config

import (
	"errors"
	"fmt"
	"strings"
)

// DumpFormat selects how computed styles are written.
type DumpFormat int

const (
	DumpFormatTree DumpFormat = iota
	DumpFormatYaml
)

var ErrInvalidDumpFormat = errors.New("not a valid DumpFormat")

var dumpFormatNames = []string{"tree", "yaml"}

// DumpFormatNames returns a list of possible string values of DumpFormat.
func DumpFormatNames() string {
	return strings.Join(dumpFormatNames, " ")
}

func (x DumpFormat) String() string {
	if x.IsValid() {
		return dumpFormatNames[x]
	}
	return fmt.Sprintf("DumpFormat(%d)", x)
}

// IsValid provides a quick way to determine if the typed value is part of
// the allowed enumerated values.
func (x DumpFormat) IsValid() bool {
	return x >= DumpFormatTree && x <= DumpFormatYaml
}

// ParseDumpFormat attempts to convert a string to a DumpFormat.
func ParseDumpFormat(name string) (DumpFormat, error) {
	for i, n := range dumpFormatNames {
		if strings.EqualFold(n, name) {
			return DumpFormat(i), nil
		}
	}
	return DumpFormat(0), fmt.Errorf("%s is %w", name, ErrInvalidDumpFormat)
}

func (x DumpFormat) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

func (x *DumpFormat) UnmarshalText(text []byte) error {
	tmp, err := ParseDumpFormat(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}
