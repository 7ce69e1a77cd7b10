// Package guideline holds the fixed guideline excerpts that are the only
// material a generated rationale may cite.
package guideline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bullet is one guideline excerpt: where it comes from and what it says.
type Bullet struct {
	Anchor string `yaml:"anchor"`
	Rule   string `yaml:"rule"`
}

// KnowledgeBase is an immutable, versioned sequence of bullets.
// A new guideline edition replaces the whole value; bullets are never edited in place.
type KnowledgeBase struct {
	edition string
	bullets []Bullet
	text    string
}

// New builds a knowledge base from an edition label and its bullets.
func New(edition string, bullets []Bullet) (*KnowledgeBase, error) {
	edition = strings.TrimSpace(edition)
	if edition == "" {
		return nil, errors.New("guideline edition is required")
	}
	if len(bullets) == 0 {
		return nil, fmt.Errorf("guideline edition %q has no bullets", edition)
	}

	owned := make([]Bullet, len(bullets))
	var b strings.Builder
	for i, bullet := range bullets {
		anchor := strings.TrimSpace(bullet.Anchor)
		rule := strings.TrimSpace(bullet.Rule)
		if anchor == "" || rule == "" {
			return nil, fmt.Errorf("guideline edition %q: bullet %d needs both anchor and rule", edition, i+1)
		}
		owned[i] = Bullet{Anchor: anchor, Rule: rule}
		fmt.Fprintf(&b, "- %s: %s\n", anchor, rule)
	}

	return &KnowledgeBase{edition: edition, bullets: owned, text: b.String()}, nil
}

// Edition identifies the guideline version the bullets were taken from.
func (kb *KnowledgeBase) Edition() string { return kb.edition }

// Bullets returns a copy of the bullets in their fixed order.
func (kb *KnowledgeBase) Bullets() []Bullet {
	out := make([]Bullet, len(kb.bullets))
	copy(out, kb.bullets)
	return out
}

// Text renders the bullets as a markdown list, one "- anchor: rule" line each.
func (kb *KnowledgeBase) Text() string { return kb.text }

type editionFile struct {
	Edition string   `yaml:"edition"`
	Bullets []Bullet `yaml:"bullets"`
}

// LoadFile reads a replacement edition from a YAML file:
//
//	edition: KDIGO 2025
//	bullets:
//	  - anchor: Recommendation 3.3.1
//	    rule: In adults, target Hb < 11.5 g/dL.
func LoadFile(path string) (*KnowledgeBase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guideline file: %w", err)
	}
	var file editionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse guideline file %s: %w", path, err)
	}
	return New(file.Edition, file.Bullets)
}
