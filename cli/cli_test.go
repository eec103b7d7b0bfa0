// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/polyconf/polyconf/registry"

	"github.com/stretchr/testify/require"
)

func cliRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.NewBuilder().
		Register(
			registry.Variant{
				Name:     "Augmenter",
				Abstract: true,
				Doc:      "Transforms samples before training.",
				Params: []registry.Param{
					registry.Int("augmentations_per_sample").WithDefault(3),
				},
			},
			registry.Variant{
				Name:       "NoiseAugmenter",
				Capability: "Augmenter",
				Doc:        "Mixes background noise into each sample.",
				Params: []registry.Param{
					registry.Float("min_noise").WithDoc("Lower SNR bound in dB."),
					registry.Float("max_noise").WithDefault(0.0),
				},
			},
			registry.Variant{
				Name:       "PitchShiftAugmenter",
				Capability: "Augmenter",
				Params: []registry.Param{
					registry.Float("semitones"),
				},
			},
			registry.Variant{
				Name: "Pipeline",
				Params: []registry.Param{
					registry.String("name"),
					registry.List("augmenters", "Augmenter"),
				},
			},
		).
		Build()
	require.NoError(t, err)
	return reg
}

func execute(t *testing.T, reg *registry.Registry, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := New(reg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestOptionsCommand(t *testing.T) {
	t.Run("lists every eligible variant with its parameters", func(t *testing.T) {
		out, err := execute(t, cliRegistry(t), "options", "Augmenter")
		require.NoError(t, err)

		require.Contains(t, out, "NoiseAugmenter - Mixes background noise into each sample.")
		require.Contains(t, out, "PitchShiftAugmenter")
		require.Contains(t, out, "min_noise (float) (required) - Lower SNR bound in dB.")
		require.Contains(t, out, "max_noise (float) (default: 0)")
		require.Contains(t, out, "augmentations_per_sample (int) (default: 3)")

		// Abstract variants are not selectable and must not be listed.
		require.NotContains(t, out, "\nAugmenter")
	})

	t.Run("describes nested parameters by their capability", func(t *testing.T) {
		out, err := execute(t, cliRegistry(t), "options", "Pipeline")
		require.NoError(t, err)

		require.Contains(t, out, "augmenters (sequence of Augmenter) (required)")
	})

	t.Run("fails for an unknown capability", func(t *testing.T) {
		_, err := execute(t, cliRegistry(t), "options", "Sink")
		require.Error(t, err)
	})
}

func TestSkeleton(t *testing.T) {
	t.Run("leaves the variant choice open when several are eligible", func(t *testing.T) {
		skel, err := Skeleton(cliRegistry(t), "Augmenter")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"<Augmenter>": nil}, skel)
	})

	t.Run("drafts a sole variant with defaults and placeholders", func(t *testing.T) {
		skel, err := Skeleton(cliRegistry(t), "Pipeline")
		require.NoError(t, err)

		require.Equal(t, map[string]any{
			"Pipeline": map[string]any{
				"name": "<string>",
				"augmenters": []any{
					map[string]any{"<Augmenter>": nil},
				},
			},
		}, skel)
	})

	t.Run("fails for an unknown capability", func(t *testing.T) {
		_, err := Skeleton(cliRegistry(t), "Sink")
		require.Error(t, err)
	})
}

func TestSkeletonCommand(t *testing.T) {
	t.Run("emits yaml", func(t *testing.T) {
		out, err := execute(t, cliRegistry(t), "skeleton", "Pipeline")
		require.NoError(t, err)

		require.Contains(t, out, "Pipeline:")
		require.Contains(t, out, "name: <string>")
	})
}

func TestHashCommand(t *testing.T) {
	t.Run("prints the canonical identity of a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "augmenter.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
NoiseAugmenter:
  min_noise: -20.0
`), 0o600))

		out, err := execute(t, cliRegistry(t), "hash", path, "Augmenter")
		require.NoError(t, err)
		require.Len(t, strings.TrimSpace(out), 64)
	})

	t.Run("surfaces binding failures", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "augmenter.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
NoiseAugmenter: {}
`), 0o600))

		_, err := execute(t, cliRegistry(t), "hash", path, "Augmenter")
		require.Error(t, err)
	})
}
