// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package registry indexes the polymorphic variants a configuration may
// name, together with the parameter specifications each one declares.
//
// Variants are registered explicitly at process initialization; there is
// no runtime type discovery. A variant may name another variant as its
// capability, forming a tree: resolving a capability considers every
// constructible variant reachable below it, grandchildren included, and
// a variant inherits the parameter specifications of its ancestors.
//
//	reg, err := registry.NewBuilder().
//	    Register(registry.Variant{
//	        Name:     "Augmenter",
//	        Abstract: true,
//	        Params: []registry.Param{
//	            registry.Int("augmentations_per_sample").WithDefault(3),
//	        },
//	    }).
//	    Register(registry.Variant{
//	        Name:       "NoiseAugmenter",
//	        Capability: "Augmenter",
//	        Params: []registry.Param{
//	            registry.Float("min_noise"),
//	        },
//	        New: newNoiseAugmenter,
//	    }).
//	    Build()
//
// A Registry never mutates after Build returns, so it may be shared
// freely across concurrent resolution passes.
package registry
