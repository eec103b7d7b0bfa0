// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRead_Macros(t *testing.T) {
	t.Run("substitutes a constant into a scalar position", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
constants:
  sample_rate: 44100
Source:
  rate: ${sample_rate}
  label: rate_${sample_rate}
`)))
		require.NoError(t, err)

		src, ok := tree.Root().Field("Source")
		require.True(t, ok)

		rate, ok := src.Field("rate")
		require.True(t, ok)
		require.Equal(t, 44100, rate.Value())

		label, ok := src.Field("label")
		require.True(t, ok)
		require.Equal(t, "rate_44100", label.Value())
	})

	t.Run("substitutes a whole constant sub-tree", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
constants:
  stft:
    n_fft: 1024
    hop: 256
Feature:
  transform: ${stft}
`)))
		require.NoError(t, err)

		feat, _ := tree.Root().Field("Feature")
		transform, ok := feat.Field("transform")
		require.True(t, ok)
		require.True(t, transform.IsMapping())

		nfft, ok := transform.Field("n_fft")
		require.True(t, ok)
		require.Equal(t, 1024, nfft.Value())
	})

	t.Run("removes the constants mapping from the tree", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
constants:
  x: 1
a: ${x}
`)))
		require.NoError(t, err)

		_, ok := tree.Root().Field(ConstantsKey)
		require.False(t, ok)
	})

	t.Run("constants may reference other constants", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
constants:
  base: /data
  out: ${base}/features
a: ${out}
`)))
		require.NoError(t, err)

		a, _ := tree.Root().Field("a")
		require.Equal(t, "/data/features", a.Value())
	})

	t.Run("fails on a cyclic constants reference", func(t *testing.T) {
		_, err := Read(FromYaml(strings.NewReader(`
constants:
  a: ${b}
  b: ${a}
x: ${a}
`)))

		var cerr ConstantCycleError
		require.ErrorAs(t, err, &cerr)
		require.NotEmpty(t, cerr.Error())
	})

	t.Run("fails on an unresolvable reference", func(t *testing.T) {
		_, err := Read(FromYaml(strings.NewReader(`a: ${nope}`)))

		var merr MacroError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, "nope", merr.Name)
		require.Equal(t, "a", merr.Key)
	})

	t.Run("datetime renders identically across all occurrences of one load", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
a: run_${datetime}
b:
  c: run_${datetime}
`)))
		require.NoError(t, err)

		a, _ := tree.Root().Field("a")
		b, _ := tree.Root().Field("b")
		c, _ := b.Field("c")
		require.Equal(t, a.Value(), c.Value())
		require.NotEqual(t, "run_${datetime}", a.Value())
	})

	t.Run("substitutes constants in key positions", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
constants:
  which: NoiseAugmenter
Augmenter:
  ${which}:
    min_noise: -20
`)))
		require.NoError(t, err)

		aug, _ := tree.Root().Field("Augmenter")
		_, ok := aug.Field("NoiseAugmenter")
		require.True(t, ok)
	})

	t.Run("fails when two keys collide after substitution", func(t *testing.T) {
		_, err := Read(FromYaml(strings.NewReader(`
constants:
  which: b
b: 1
${which}: 2
`)))

		var derr DuplicateKeyError
		require.ErrorAs(t, err, &derr)
		require.Equal(t, "b", derr.Key)
	})
}

func TestRead_Inherit(t *testing.T) {
	t.Run("resolves to the nearest ancestor value of the same key", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
name: experiment_7
Pipeline:
  name: stage_a
  Sink:
    name: ${inherit}
`)))
		require.NoError(t, err)

		pipeline, _ := tree.Root().Field("Pipeline")
		sink, _ := pipeline.Field("Sink")
		name, ok := sink.Field("name")
		require.True(t, ok)
		require.Equal(t, "stage_a", name.Value())
	})

	t.Run("skips ancestors whose own value is substituted", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
name: experiment_7
Pipeline:
  name: ${inherit}
  Sink:
    name: ${inherit}
`)))
		require.NoError(t, err)

		pipeline, _ := tree.Root().Field("Pipeline")
		sink, _ := pipeline.Field("Sink")

		name, _ := pipeline.Field("name")
		require.Equal(t, "experiment_7", name.Value())

		name, _ = sink.Field("name")
		require.Equal(t, "experiment_7", name.Value())
	})

	t.Run("fails when no ancestor defines the key", func(t *testing.T) {
		_, err := Read(FromYaml(strings.NewReader(`
Pipeline:
  name: ${inherit}
`)))

		var merr MacroError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, macroInherit, merr.Name)
		require.Equal(t, "name", merr.Key)
	})

	t.Run("does not inherit from the containing sequence", func(t *testing.T) {
		tree, err := Read(FromYaml(strings.NewReader(`
steps: fallback
Pipeline:
  steps:
    - ${inherit}
    - second
`)))
		require.NoError(t, err)

		pipeline, _ := tree.Root().Field("Pipeline")
		steps, _ := pipeline.Field("steps")
		items := steps.Items()
		require.Len(t, items, 2)
		require.Equal(t, "fallback", items[0].Value())
	})
}
