// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"strings"
	"testing"

	"github.com/polyconf/polyconf/config"

	"github.com/stretchr/testify/require"
)

func mustTree(t *testing.T, text string) config.Node {
	t.Helper()

	tree, err := config.Read(config.FromYaml(strings.NewReader(text)))
	require.NoError(t, err)
	return tree.Root()
}

func TestBind(t *testing.T) {
	reg := testRegistry(t)

	t.Run("binds supplied values and inherited defaults", func(t *testing.T) {
		root := mustTree(t, `
NoiseAugmenter:
  min_noise: -20.0
`)

		rpt, err := Bind(reg, "Augmenter", root)
		require.NoError(t, err)
		require.Equal(t, "NoiseAugmenter", rpt.Variant())
		require.Equal(t, config.DefaultNamespace, rpt.Namespace())

		v, ok := rpt.Param("min_noise")
		require.True(t, ok)
		require.Equal(t, -20.0, v.Scalar())

		// augmentations_per_sample is declared on the Augmenter base
		// with default 3 and was omitted here.
		v, ok = rpt.Param("augmentations_per_sample")
		require.True(t, ok)
		require.Equal(t, 3, v.Scalar())

		v, ok = rpt.Param("max_noise")
		require.True(t, ok)
		require.Equal(t, 0.0, v.Scalar())
	})

	t.Run("accumulates every problem of a node into one failure", func(t *testing.T) {
		root := mustTree(t, `
Pipeline:
  augmenter:
    NoiseAugmenter:
      min_nois: -20.0
      steps: 2
`)
		// Pipeline is missing required "name"; NoiseAugmenter is missing
		// required "min_noise" and supplies two unknown keys.
		_, err := Bind(reg, "Pipeline", root)

		var nerr InvalidNodeError
		require.ErrorAs(t, err, &nerr)
		require.Equal(t, "Pipeline", nerr.Variant)
		require.Len(t, nerr.Errors, 2)

		var merr MissingParameterError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, "Pipeline", merr.Variant)
		require.Equal(t, "name", merr.Param)

		var perr ParamError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "augmenter", perr.Param)

		var child InvalidNodeError
		require.ErrorAs(t, perr.Cause, &child)
		require.Equal(t, "NoiseAugmenter", child.Variant)
		require.Len(t, child.Errors, 3)

		var missing []string
		var unknown []string
		for _, e := range child.Errors {
			switch e := e.(type) {
			case MissingParameterError:
				missing = append(missing, e.Param)
			case UnknownParameterError:
				unknown = append(unknown, e.Param)
			}
		}
		require.Equal(t, []string{"min_noise"}, missing)
		require.ElementsMatch(t, []string{"min_nois", "steps"}, unknown)
	})

	t.Run("reports declared versus provided type on mismatch", func(t *testing.T) {
		root := mustTree(t, `
NoiseAugmenter:
  min_noise: loud
`)

		_, err := Bind(reg, "Augmenter", root)

		var terr TypeMismatchError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "NoiseAugmenter", terr.Variant)
		require.Equal(t, "min_noise", terr.Param)
		require.Equal(t, "float", terr.Declared)
		require.Equal(t, "string", terr.Provided)
	})

	t.Run("accepts ints for float parameters", func(t *testing.T) {
		root := mustTree(t, `
NoiseAugmenter:
  min_noise: -20
`)

		rpt, err := Bind(reg, "Augmenter", root)
		require.NoError(t, err)

		v, _ := rpt.Param("min_noise")
		require.Equal(t, -20.0, v.Scalar())
	})

	t.Run("rejects floats for int parameters", func(t *testing.T) {
		root := mustTree(t, `
PitchShiftAugmenter:
  steps: 2.5
`)

		_, err := Bind(reg, "Augmenter", root)

		var terr TypeMismatchError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "int", terr.Declared)
	})

	t.Run("binds a variant with a null body from defaults alone", func(t *testing.T) {
		root := mustTree(t, `Sampler:`)

		rpt, err := Bind(reg, "Sampler", root)
		require.NoError(t, err)

		v, ok := rpt.Param("batch_size")
		require.True(t, ok)
		require.Equal(t, 128, v.Scalar())
	})

	t.Run("preserves list order", func(t *testing.T) {
		root := mustTree(t, `
Chain:
  augmenters:
    - NoiseAugmenter:
        min_noise: -20.0
    - PitchShiftAugmenter:
        steps: 2
    - VolumeAugmenter:
        gain_db: -6.0
`)

		rpt, err := Bind(reg, "Chain", root)
		require.NoError(t, err)

		v, ok := rpt.Param("augmenters")
		require.True(t, ok)

		list := v.List()
		require.Len(t, list, 3)
		require.Equal(t, "NoiseAugmenter", list[0].Variant())
		require.Equal(t, "PitchShiftAugmenter", list[1].Variant())
		require.Equal(t, "VolumeAugmenter", list[2].Variant())
	})

	t.Run("reports the failing element of a list", func(t *testing.T) {
		root := mustTree(t, `
Chain:
  augmenters:
    - NoiseAugmenter:
        min_noise: -20.0
    - PitchShiftAugmenter: {}
`)

		_, err := Bind(reg, "Chain", root)

		var nerr InvalidNodeError
		require.ErrorAs(t, err, &nerr)

		var perr ParamError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "augmenters[1]", perr.Param)
	})

	t.Run("binds collections under their configured names", func(t *testing.T) {
		root := mustTree(t, `
Bank:
  augmenters:
    soft:
      NoiseAugmenter:
        min_noise: -40.0
    hard:
      NoiseAugmenter:
        min_noise: -10.0
`)

		rpt, err := Bind(reg, "Bank", root)
		require.NoError(t, err)

		v, ok := rpt.Param("augmenters")
		require.True(t, ok)

		coll := v.Collection()
		require.Len(t, coll, 2)
		soft, ok := coll["soft"]
		require.True(t, ok)
		minNoise, _ := soft.Param("min_noise")
		require.Equal(t, -40.0, minNoise.Scalar())
	})

	t.Run("rejects a scalar where a sequence is declared", func(t *testing.T) {
		root := mustTree(t, `
Chain:
  augmenters: none
`)

		_, err := Bind(reg, "Chain", root)

		var terr TypeMismatchError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "augmenters", terr.Param)
	})
}

func TestBind_Namespace(t *testing.T) {
	reg := testRegistry(t)

	t.Run("defaults to root", func(t *testing.T) {
		rpt, err := Bind(reg, "Sampler", mustTree(t, `Sampler:`))
		require.NoError(t, err)
		require.Equal(t, "root", rpt.Namespace())
	})

	t.Run("an explicit tag applies to the node and its descendants", func(t *testing.T) {
		root := mustTree(t, `
Pipeline:
  config_namespace: alt
  name: run_a
  augmenter:
    NoiseAugmenter:
      min_noise: -20.0
`)

		rpt, err := Bind(reg, "Pipeline", root)
		require.NoError(t, err)
		require.Equal(t, "alt", rpt.Namespace())

		v, _ := rpt.Param("augmenter")
		require.Equal(t, "alt", v.Child().Namespace())
	})

	t.Run("a nested explicit tag overrides the inherited one", func(t *testing.T) {
		root := mustTree(t, `
Pipeline:
  config_namespace: alt
  name: run_a
  augmenter:
    NoiseAugmenter:
      config_namespace: experiment
      min_noise: -20.0
`)

		rpt, err := Bind(reg, "Pipeline", root)
		require.NoError(t, err)

		v, _ := rpt.Param("augmenter")
		require.Equal(t, "experiment", v.Child().Namespace())
	})
}

func TestResolved_Decode(t *testing.T) {
	reg := testRegistry(t)

	t.Run("decodes scalar parameters into a tagged struct", func(t *testing.T) {
		root := mustTree(t, `
NoiseAugmenter:
  min_noise: -20.0
  max_noise: 5.0
`)

		rpt, err := Bind(reg, "Augmenter", root)
		require.NoError(t, err)

		var cfg struct {
			MinNoise float64 `config:"min_noise"`
			MaxNoise float64 `config:"max_noise"`
			PerSamp  int     `config:"augmentations_per_sample"`
		}
		require.NoError(t, rpt.Decode(&cfg))
		require.Equal(t, -20.0, cfg.MinNoise)
		require.Equal(t, 5.0, cfg.MaxNoise)
		require.Equal(t, 3, cfg.PerSamp)
	})
}
