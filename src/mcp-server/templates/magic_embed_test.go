// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicEmbed(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "ReadFile Instructions",
			testFunc: func(t *testing.T) {
				data, err := MagicEmbed.ReadFile(InstructionsFile)
				require.NoError(t, err)
				assert.Contains(t, string(data), "{{range .Tools}}")
			},
		},
		{
			name: "ReadFile Missing",
			testFunc: func(t *testing.T) {
				_, err := MagicEmbed.ReadFile("non-existent.md")
				assert.Error(t, err)
				_, err = MagicEmbed.ReadFile("../invalid.md")
				assert.Error(t, err)
			},
		},
		{
			name: "ReadDir Root",
			testFunc: func(t *testing.T) {
				entries, err := MagicEmbed.ReadDir(".")
				require.NoError(t, err)
				var names []string
				for _, e := range entries {
					assert.False(t, e.IsDir(), e.Name())
					names = append(names, e.Name())
				}
				assert.Contains(t, names, InstructionsFile)
			},
		},
		{
			name: "Open",
			testFunc: func(t *testing.T) {
				f, err := MagicEmbed.Open(InstructionsFile)
				require.NoError(t, err)
				defer f.Close()
				data, err := io.ReadAll(f)
				require.NoError(t, err)
				assert.NotEmpty(t, data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
