package types

import (
	"fmt"
	"strings"
)

type Architecture string

const (
	ArchitectureAll      Architecture = "all"
	ArchitectureAmd64    Architecture = "amd64"
	ArchitectureArm64    Architecture = "arm64"
	ArchitectureArmel    Architecture = "armel"
	ArchitectureArmhf    Architecture = "armhf"
	ArchitectureI386     Architecture = "i386"
	ArchitectureMips64el Architecture = "mips64el"
	ArchitectureMipsel   Architecture = "mipsel"
	ArchitecturePpc64el  Architecture = "ppc64el"
	ArchitectureS390x    Architecture = "s390x"
	ArchitectureSource   Architecture = "source"
)

// DefaultArchitecture is assigned when an Architecture field is absent or
// carries a token outside the known set.
const DefaultArchitecture = ArchitectureAll

var knownArchitectures = map[string]Architecture{
	"all":      ArchitectureAll,
	"amd64":    ArchitectureAmd64,
	"arm64":    ArchitectureArm64,
	"armel":    ArchitectureArmel,
	"armhf":    ArchitectureArmhf,
	"i386":     ArchitectureI386,
	"mips64el": ArchitectureMips64el,
	"mipsel":   ArchitectureMipsel,
	"ppc64el":  ArchitecturePpc64el,
	"s390x":    ArchitectureS390x,
	"source":   ArchitectureSource,
}

// ParseArchitecture maps a token onto the closed architecture set. Unknown
// tokens return DefaultArchitecture together with an error.
func ParseArchitecture(value string) (Architecture, error) {
	if arch, ok := knownArchitectures[strings.TrimSpace(value)]; ok {
		return arch, nil
	}
	return DefaultArchitecture, fmt.Errorf("unknown architecture %q", strings.TrimSpace(value))
}

func (a Architecture) String() string {
	if a == "" {
		return string(DefaultArchitecture)
	}
	return string(a)
}

type PackageRecord struct {
	Name         string       `yaml:"name" toml:"name"`
	Version      string       `yaml:"version" toml:"version"`
	Architecture Architecture `yaml:"architecture" toml:"architecture"`
	Description  *string      `yaml:"description,omitempty" toml:"description,omitempty"`
}

// DescriptionOr returns the description or fallback when none was recorded.
func (r PackageRecord) DescriptionOr(fallback string) string {
	if r.Description == nil {
		return fallback
	}
	return *r.Description
}

type PackageFilter struct {
	NameContains string
	Architecture Architecture
	Limit        int
}

type PackageExport struct {
	Packages []PackageRecord `yaml:"packages" toml:"packages"`
}

type ParseResult struct {
	Records []PackageRecord
	Errors  []*RecordParseError
}
