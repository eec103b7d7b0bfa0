// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cli assembles exploration commands over a variant registry:
// listing the available variants of a capability, drafting a skeleton
// configuration and hashing a configuration file. Applications mount
// the returned command under their own root command.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/polyconf/polyconf"
	"github.com/polyconf/polyconf/config"
	"github.com/polyconf/polyconf/registry"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// New returns the polyconf exploration command set for the given
// registry. The registry is only queried, never resolved against,
// except by the hash command which runs one full resolution pass.
func New(reg *registry.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "polyconf",
		Short:        "Explore registered configuration variants",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newOptionsCommand(reg),
		newSkeletonCommand(reg),
		newHashCommand(reg),
	)
	return cmd
}

func newOptionsCommand(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "options <capability>",
		Short: "List the variants satisfying a capability, with their parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			capability := args[0]
			variants := reg.VariantsOf(capability)
			if len(variants) == 0 {
				return fmt.Errorf("no variants registered for capability %q", capability)
			}

			out := cmd.OutOrStdout()
			for _, d := range variants {
				fmt.Fprintf(out, "%s", d.Name())
				if doc := d.Doc(); doc != "" {
					fmt.Fprintf(out, " - %s", doc)
				}
				fmt.Fprintln(out)

				for _, p := range d.Params() {
					fmt.Fprintf(out, "  %s (%s)", p.Name(), describeParam(p))
					if def, ok := p.Default(); ok {
						fmt.Fprintf(out, " (default: %v)", def)
					} else {
						fmt.Fprint(out, " (required)")
					}
					if doc := p.Doc(); doc != "" {
						fmt.Fprintf(out, " - %s", doc)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}

func newSkeletonCommand(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "skeleton <capability>",
		Short: "Draft a YAML configuration skeleton for a capability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skel, err := Skeleton(reg, args[0])
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(skel)
		},
	}
}

func newHashCommand(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file> <capability>",
		Short: "Resolve a configuration file and print its canonical identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, capability := args[0], args[1]
			slog.Debug("resolving configuration file", "path", path, "capability", capability)

			dir, base := filepath.Split(path)
			if dir == "" {
				dir = "."
			}
			r := config.NewFileReader(os.DirFS(dir), base)

			_, id, err := polyconf.Resolve(reg, capability, config.FromYaml(r))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	}
}

// maxSkeletonDepth bounds recursion through self-referencing
// capability parameters.
const maxSkeletonDepth = 16

// Skeleton drafts a configuration for the capability with defaults
// filled in and placeholders where a value, or a variant choice, is
// required. When a capability has exactly one eligible variant it is
// selected automatically, mirroring what resolution would do.
func Skeleton(reg *registry.Registry, capability string) (map[string]any, error) {
	variants := reg.VariantsOf(capability)
	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants registered for capability %q", capability)
	}
	return capabilitySkeleton(reg, capability, 0), nil
}

func capabilitySkeleton(reg *registry.Registry, capability string, depth int) map[string]any {
	variants := reg.VariantsOf(capability)
	if len(variants) != 1 || depth >= maxSkeletonDepth {
		// The choice of variant is the user's to make.
		return map[string]any{placeholder(capability): nil}
	}

	d := variants[0]
	params := d.Params()
	body := make(map[string]any, len(params))
	for _, p := range params {
		body[p.Name()] = paramSkeleton(reg, p, depth)
	}
	return map[string]any{d.Name(): body}
}

func paramSkeleton(reg *registry.Registry, p registry.Param, depth int) any {
	if def, ok := p.Default(); ok {
		return def
	}

	switch p.Kind() {
	case registry.KindNested:
		return capabilitySkeleton(reg, p.Capability(), depth+1)
	case registry.KindList:
		return []any{capabilitySkeleton(reg, p.Capability(), depth+1)}
	case registry.KindCollection:
		return map[string]any{
			placeholder("name"): capabilitySkeleton(reg, p.Capability(), depth+1),
		}
	default:
		return placeholder(p.Scalar().String())
	}
}

func describeParam(p registry.Param) string {
	switch p.Kind() {
	case registry.KindNested:
		return p.Capability()
	case registry.KindList:
		return fmt.Sprintf("sequence of %s", p.Capability())
	case registry.KindCollection:
		return fmt.Sprintf("named collection of %s", p.Capability())
	default:
		return p.Scalar().String()
	}
}

func placeholder(name string) string {
	return "<" + name + ">"
}
