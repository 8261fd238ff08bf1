package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, nil},
		{"single env string", []string{"2026-12-25, 2026-01-01"}, []string{"2026-12-25", "2026-01-01"}},
		{"yaml list", []string{" 2026-12-25", "2026-01-01 "}, []string{"2026-12-25", "2026-01-01"}},
		{"blank entries", []string{"2026-12-25,, ", ""}, []string{"2026-12-25"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.in))
		})
	}
}
