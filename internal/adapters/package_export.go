package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"repo-mirror/internal/ports"
	"repo-mirror/internal/types"
)

const (
	ExportFormatYAML = "yaml"
	ExportFormatTOML = "toml"
)

type PackageExportAdapter struct{}

func NewPackageExportAdapter() PackageExportAdapter {
	return PackageExportAdapter{}
}

// ResolveExportFormat picks the export format from an explicit value or,
// when empty, from the file extension. YAML is the fallback.
func ResolveExportFormat(path string, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case ExportFormatYAML, "yml":
		return ExportFormatYAML, nil
	case ExportFormatTOML:
		return ExportFormatTOML, nil
	case "":
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported export format " + format)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ExportFormatTOML, nil
	}
	return ExportFormatYAML, nil
}

func (a PackageExportAdapter) Write(path string, format string, records []types.PackageRecord) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	resolved, err := ResolveExportFormat(path, format)
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.PackageRecord{}
	}
	data, err := encodeExport(resolved, types.PackageExport{Packages: records})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal package export").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create export directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write package export").
			WithCause(err)
	}
	return nil
}

func encodeExport(format string, export types.PackageExport) ([]byte, error) {
	if format == ExportFormatTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(export); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(export)
}

var _ ports.PackageExportPort = PackageExportAdapter{}
