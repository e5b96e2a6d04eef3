package adl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/ctxlog"
	"github.com/componentry/capgen/internal/settings"
)

// Loader reads ADL files and produces the sealed composition model.
type Loader struct{}

// NewLoader creates an ADL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths, translates
// the blocks into the composition model and settings store, and seals the
// composition. Files are visited in lexical walk order and blocks in
// declaration order, so the resulting end handles are stable across runs.
func (l *Loader) Load(ctx context.Context, paths ...string) (*composition.Composition, *settings.Store, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("ADL loader started.", "path_count", len(paths))

	files, err := l.findADLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered ADL files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*fileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse ADL file %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode ADL file %s: %w", file, diags)
		}
		roots = append(roots, &root)
	}

	comp, store, err := translate(roots)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("ADL loading complete.",
		"instances", len(comp.Instances),
		"connections", len(comp.Connections),
		"ends", comp.EndCount())
	return comp, store, nil
}

// translate merges decoded file roots into one sealed composition.
func translate(roots []*fileRoot) (*composition.Composition, *settings.Store, error) {
	connectors := map[string]*composition.ConnectorType{}
	comp := &composition.Composition{}
	store := settings.New()
	instances := map[string]*composition.Instance{}

	for _, root := range roots {
		for _, block := range root.Components {
			if _, dup := connectors[block.Name]; dup {
				return nil, nil, fmt.Errorf("duplicate component %q", block.Name)
			}
			attrs, err := bodyAttributes(block.Body)
			if err != nil {
				return nil, nil, fmt.Errorf("component %q: %w", block.Name, err)
			}
			connectors[block.Name] = composition.NewConnectorType(block.Name, attrs)
		}
		for _, block := range root.Instances {
			if _, dup := instances[block.Name]; dup {
				return nil, nil, fmt.Errorf("duplicate instance %q", block.Name)
			}
			inst := &composition.Instance{
				Name:         block.Name,
				Component:    block.Component,
				AddressSpace: block.AddressSpace,
			}
			instances[block.Name] = inst
			comp.Instances = append(comp.Instances, inst)
		}
	}

	for _, root := range roots {
		for _, block := range root.Connections {
			connType, ok := connectors[block.Type]
			if !ok {
				return nil, nil, fmt.Errorf("connection %q uses undeclared component type %q", block.Name, block.Type)
			}
			conn := &composition.Connection{Name: block.Name, Type: connType}
			for _, ref := range block.From {
				end, err := resolveEnd(instances, block.Name, ref)
				if err != nil {
					return nil, nil, err
				}
				conn.FromEnds = append(conn.FromEnds, end)
			}
			for _, ref := range block.To {
				end, err := resolveEnd(instances, block.Name, ref)
				if err != nil {
					return nil, nil, err
				}
				conn.ToEnds = append(conn.ToEnds, end)
			}
			comp.Connections = append(comp.Connections, conn)
		}
		for _, block := range root.Settings {
			attrs, err := bodyAttributes(block.Body)
			if err != nil {
				return nil, nil, fmt.Errorf("settings %q: %w", block.Scope, err)
			}
			for key, value := range attrs {
				store.Set(block.Scope, key, value)
			}
		}
	}

	if err := comp.Seal(); err != nil {
		return nil, nil, err
	}
	return comp, store, nil
}

func resolveEnd(instances map[string]*composition.Instance, connName, ref string) (*composition.ConnectionEnd, error) {
	instName, iface, err := composition.ParseEndRef(ref)
	if err != nil {
		return nil, fmt.Errorf("connection %q: %w", connName, err)
	}
	inst, ok := instances[instName]
	if !ok {
		return nil, fmt.Errorf("connection %q references undeclared instance %q", connName, instName)
	}
	return &composition.ConnectionEnd{Instance: inst, Interface: iface}, nil
}

// findADLFiles walks the given paths and returns every .hcl file, each at
// most once, in walk order.
func (l *Loader) findADLFiles(paths []string) ([]string, error) {
	var all []string
	seen := map[string]struct{}{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, ok := seen[p]; !ok {
						all = append(all, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, ok := seen[path]; !ok {
				all = append(all, path)
				seen[path] = struct{}{}
			}
		}
	}
	return all, nil
}
