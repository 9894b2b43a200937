// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

func TestRankOptionsFlags(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg.Rank = types.RankConfig{Threshold: 0.5, Limit: 7}

	tests := []struct {
		name          string
		args          []string
		wantThreshold float64
		wantLimit     int
	}{
		{"config when unset", nil, 0.5, 7},
		{"negative threshold", []string{"--threshold", "-0.25"}, -0.25, 7},
		{"zero threshold", []string{"--threshold", "0"}, 0, 7},
		{"limit", []string{"--limit", "3"}, 0.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "rank"}
			addRankFlags(cmd)
			require.NoError(t, cmd.Flags().Parse(tt.args))

			opts := rankOptions(cmd)
			assert.Equal(t, tt.wantThreshold, opts.Threshold)
			assert.Equal(t, tt.wantLimit, opts.Limit)
		})
	}
}
