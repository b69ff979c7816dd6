// Package export turns calculated CPTs and whole models into portable
// artifacts. Generation is pure; writing is a separate step so tests
// never touch the filesystem.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/causet/internal/core"
	"github.com/agenthands/causet/internal/core/model"
	"github.com/agenthands/causet/internal/core/quantify"
)

// Entries returns the CPT rows sorted by subset key, so every export
// format shares one canonical ordering.
func Entries(cpt quantify.CPT) []quantify.Entry {
	keys := make([]string, 0, len(cpt))
	for k := range cpt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]quantify.Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, cpt[k])
	}
	return out
}

// WriteCPTCSV writes one row per parent subset: the subset as an
// ordered factor-id list, then mean and standard deviation.
func WriteCPTCSV(w io.Writer, cpt quantify.CPT) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"subset", "mean", "std_dev"}); err != nil {
		return err
	}
	for _, e := range Entries(cpt) {
		row := []string{
			strings.Join(e.Members, ";"),
			strconv.FormatFloat(e.Mean, 'g', -1, 64),
			strconv.FormatFloat(e.StdDev, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCPTYAML writes the same rows as a YAML document.
func WriteCPTYAML(w io.Writer, target string, method string, cpt quantify.CPT) error {
	doc := struct {
		Target  string           `yaml:"target"`
		Method  string           `yaml:"method"`
		Entries []quantify.Entry `yaml:"cpt"`
	}{
		Target:  target,
		Method:  method,
		Entries: Entries(cpt),
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

// ModelFile is the YAML interchange schema for a whole causal model.
// References come first so links can validate their ref ids on ingest.
type ModelFile struct {
	References []model.Reference `yaml:"references,omitempty"`
	Nodes      []model.Node      `yaml:"nodes"`
	Links      []model.Link      `yaml:"links,omitempty"`
}

// Snapshot captures the full contents of a model as a ModelFile.
func Snapshot(c *core.Causet) *ModelFile {
	return &ModelFile{
		References: c.References(),
		Nodes:      c.Nodes(),
		Links:      c.Links(),
	}
}

// WriteModelYAML serializes a ModelFile.
func WriteModelYAML(w io.Writer, f *ModelFile) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(f)
}

// ReadModelYAML parses a ModelFile.
func ReadModelYAML(r io.Reader) (*ModelFile, error) {
	var f ModelFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	return &f, nil
}

// Apply ingests a ModelFile into a model: references, then nodes, then
// links, so every link's endpoints and evidence already exist.
func Apply(ctx context.Context, c *core.Causet, f *ModelFile) error {
	for _, ref := range f.References {
		if err := c.AddReference(ctx, ref); err != nil {
			return fmt.Errorf("reference [%s]: %w", ref.ID, err)
		}
	}
	for _, node := range f.Nodes {
		if err := c.AddNode(ctx, node); err != nil {
			return fmt.Errorf("node [%s]: %w", node.ID, err)
		}
	}
	for _, link := range f.Links {
		if _, err := c.AddLink(ctx, link); err != nil {
			return fmt.Errorf("link [%s] (%s -> %s): %w", link.ID, link.ParentID, link.ChildID, err)
		}
	}
	return nil
}
