// Package evidence reads evidence sets from YAML or JSON files.
package evidence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/distrust/internal/model"
	"gopkg.in/yaml.v3"
)

// maxFileBytes bounds the size of an evidence file
const maxFileBytes = 8 << 20

// Weigher infers an authority weight from a source URL
type Weigher interface {
	Weight(rawURL string) float64
}

// Loader reads evidence files. With a Weigher, items that carry a url but
// no authority_weight get their weight from the url.
type Loader struct {
	weigher Weigher
}

// NewLoader creates a loader. weigher may be nil.
func NewLoader(weigher Weigher) *Loader {
	return &Loader{weigher: weigher}
}

// Load reads an evidence set from path without weight inference
func Load(path string) (*model.EvidenceSet, error) {
	return NewLoader(nil).Load(path)
}

// Parse decodes an evidence set without weight inference
func Parse(data []byte) (*model.EvidenceSet, error) {
	return NewLoader(nil).Parse(data)
}

// Load reads an evidence set from path. JSON is accepted as a YAML subset.
func (l *Loader) Load(path string) (*model.EvidenceSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat evidence file: %w", err)
	}
	if info.Size() > maxFileBytes {
		return nil, fmt.Errorf("evidence file %s is %d bytes, limit is %d", path, info.Size(), maxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence file: %w", err)
	}

	set, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if set.Claim == "" {
		set.Claim = claimFromPath(path)
	}

	return set, nil
}

// Parse decodes an evidence set. A document that is a bare list is read as
// the evidence of an unnamed claim.
func (l *Loader) Parse(data []byte) (*model.EvidenceSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	doc := root.Content[0]
	set := &model.EvidenceSet{}

	var items *yaml.Node
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&set.Evidence); err != nil {
			return nil, fmt.Errorf("decode evidence list: %w", err)
		}
		items = doc
	case yaml.MappingNode:
		if err := doc.Decode(set); err != nil {
			return nil, fmt.Errorf("decode evidence set: %w", err)
		}
		items = mappingValue(doc, "evidence")
	default:
		return nil, fmt.Errorf("expected a mapping or a list at top level")
	}

	if l.weigher != nil && items != nil && items.Kind == yaml.SequenceNode {
		l.inferWeights(set.Evidence, items)
	}

	return set, nil
}

// inferWeights fills authority_weight for items that omit it but give a url.
// An explicit weight, including 0, is never replaced.
func (l *Loader) inferWeights(evidence []model.Evidence, items *yaml.Node) {
	for i, node := range items.Content {
		if i >= len(evidence) || node.Kind != yaml.MappingNode {
			continue
		}
		if mappingValue(node, "authority_weight") != nil || evidence[i].URL == "" {
			continue
		}
		evidence[i].AuthorityWeight = l.weigher.Weight(evidence[i].URL)
	}
}

// mappingValue returns the value node for key, or nil
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// Marshal encodes an evidence set as YAML
func Marshal(set *model.EvidenceSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode evidence set: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode evidence set: %w", err)
	}
	return buf.Bytes(), nil
}

// claimFromPath derives a readable claim name from a file name
func claimFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}
