package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchitecture(t *testing.T) {
	tests := []struct {
		input   string
		want    Architecture
		wantErr bool
	}{
		{input: "amd64", want: ArchitectureAmd64},
		{input: " arm64 ", want: ArchitectureArm64},
		{input: "all", want: ArchitectureAll},
		{input: "source", want: ArchitectureSource},
		{input: "sparc", want: DefaultArchitecture, wantErr: true},
		{input: "", want: DefaultArchitecture, wantErr: true},
		{input: "AMD64", want: DefaultArchitecture, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseArchitecture(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchitectureString(t *testing.T) {
	assert.Equal(t, "all", Architecture("").String())
	assert.Equal(t, "i386", ArchitectureI386.String())
}

func TestDescriptionOr(t *testing.T) {
	description := "GNU Bourne Again SHell"
	assert.Equal(t, "-", PackageRecord{Name: "bash"}.DescriptionOr("-"))
	assert.Equal(t, description, PackageRecord{Name: "bash", Description: &description}.DescriptionOr("-"))
}

func TestSyncReportDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Zero(t, SyncReport{StartedAt: start}.Duration())
	assert.Equal(t, 90*time.Second, SyncReport{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}.Duration())
}
