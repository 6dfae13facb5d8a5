package core

import (
	"errors"
	"strings"

	debversion "github.com/knqyf263/go-deb-version"

	"repo-mirror/internal/types"
)

const (
	fieldPackage      = "Package:"
	fieldVersion      = "Version:"
	fieldArchitecture = "Architecture:"
	fieldDescription  = "Description:"
)

var (
	errEmptyName      = errors.New("package name is empty")
	errMissingVersion = errors.New("version is missing")
)

// recordBuilder holds the single piece of parser state: the record currently
// being assembled. A record is only appended on the next Package marker or at
// end of input.
type recordBuilder struct {
	current   *types.PackageRecord
	startLine int
	records   []types.PackageRecord
	errs      []*types.RecordParseError
}

func (b *recordBuilder) open() bool {
	return b.current != nil
}

func (b *recordBuilder) start(name string, line int) {
	b.finalize()
	b.current = &types.PackageRecord{
		Name:         name,
		Architecture: types.DefaultArchitecture,
	}
	b.startLine = line
}

func (b *recordBuilder) setVersion(value string, line int) {
	b.current.Version = value
	if value == "" {
		return
	}
	if _, err := debversion.NewVersion(value); err != nil {
		b.fail(line, "Version", value, err)
	}
}

func (b *recordBuilder) setArchitecture(value string, line int) {
	arch, err := types.ParseArchitecture(value)
	if err != nil {
		b.fail(line, "Architecture", value, err)
	}
	b.current.Architecture = arch
}

func (b *recordBuilder) setDescription(value string) {
	description := value
	b.current.Description = &description
}

func (b *recordBuilder) fail(line int, field string, value string, err error) {
	b.errs = append(b.errs, &types.RecordParseError{
		Line:    line,
		Package: b.current.Name,
		Field:   field,
		Value:   value,
		Err:     err,
	})
}

// finalize moves the open record into the output. Incomplete records are
// emitted as well; their gaps are reported, not dropped.
func (b *recordBuilder) finalize() {
	if b.current == nil {
		return
	}
	if b.current.Name == "" {
		b.fail(b.startLine, "Package", "", errEmptyName)
	}
	if b.current.Version == "" {
		b.fail(b.startLine, "Version", "", errMissingVersion)
	}
	b.records = append(b.records, *b.current)
	b.current = nil
}

func (b *recordBuilder) consume(line string, lineNo int) {
	if value, ok := fieldValue(line, fieldPackage); ok {
		b.start(value, lineNo)
		return
	}
	if !b.open() {
		return
	}
	if value, ok := fieldValue(line, fieldVersion); ok {
		b.setVersion(value, lineNo)
		return
	}
	if value, ok := fieldValue(line, fieldArchitecture); ok {
		b.setArchitecture(value, lineNo)
		return
	}
	if value, ok := fieldValue(line, fieldDescription); ok {
		b.setDescription(value)
	}
}

func fieldValue(line string, tag string) (string, bool) {
	if !strings.HasPrefix(line, tag) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, tag)), true
}

// ParseIndex scans index text into records in source order, together with
// the per-field problems found on the way. It never fails as a whole.
func ParseIndex(text string) types.ParseResult {
	builder := &recordBuilder{}
	lineNo := 0
	for line := range strings.Lines(text) {
		lineNo++
		builder.consume(strings.TrimRight(line, "\r\n"), lineNo)
	}
	builder.finalize()
	return types.ParseResult{
		Records: builder.records,
		Errors:  builder.errs,
	}
}

func ParseRecords(text string) []types.PackageRecord {
	return ParseIndex(text).Records
}
