// Package triage maps a reported condition descriptor to a priority and emergency flag.
package triage

import (
	"fmt"
	"os"
	"strings"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"gopkg.in/yaml.v3"
)

type Result struct {
	Priority    domain.Priority `yaml:"priority" json:"priority"`
	IsEmergency bool            `yaml:"emergency" json:"is_emergency"`
}

type Classifier struct {
	table map[string]Result
}

var defaultTable = map[string]Result{
	"critical":  {Priority: domain.PriorityEmergency, IsEmergency: true},
	"emergency": {Priority: domain.PriorityEmergency, IsEmergency: true},
	"serious":   {Priority: domain.PriorityHigh, IsEmergency: true},
	"injured":   {Priority: domain.PriorityHigh},
	"sick":      {Priority: domain.PriorityHigh},
	"minor":     {Priority: domain.PriorityLow},
	"stable":    {Priority: domain.PriorityNormal},
	"healthy":   {Priority: domain.PriorityNormal},
	"unknown":   {Priority: domain.PriorityNormal},
}

func New() *Classifier {
	t := make(map[string]Result, len(defaultTable))
	for k, v := range defaultTable {
		t[k] = v
	}
	return &Classifier{table: t}
}

// NewFromTable builds a classifier from an explicit table, rejecting rules that
// flag an emergency below High priority.
func NewFromTable(table map[string]Result) (*Classifier, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("triage: empty rule table")
	}
	t := make(map[string]Result, len(table))
	for k, v := range table {
		key := normalize(k)
		if key == "" {
			return nil, fmt.Errorf("triage: empty descriptor")
		}
		p, err := domain.ParsePriority(string(v.Priority))
		if err != nil {
			return nil, fmt.Errorf("triage: descriptor %q: %w", k, err)
		}
		if v.IsEmergency && !p.AllowsEmergency() {
			return nil, fmt.Errorf("triage: descriptor %q: emergency requires High or Emergency priority, got %s", k, p)
		}
		t[key] = Result{Priority: p, IsEmergency: v.IsEmergency}
	}
	if _, ok := t["unknown"]; !ok {
		t["unknown"] = defaultTable["unknown"]
	}
	return &Classifier{table: t}, nil
}

type rulesFile struct {
	Descriptors map[string]Result `yaml:"descriptors"`
}

// Load reads a YAML rules file; an empty path returns the built-in table.
func Load(path string) (*Classifier, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("triage: read rules: %w", err)
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("triage: parse rules: %w", err)
	}
	return NewFromTable(rf.Descriptors)
}

// Classify returns the priority and emergency flag for a descriptor. An empty
// descriptor is treated as "unknown"; an unrecognised one is invalid input.
func (c *Classifier) Classify(descriptor string) (domain.Priority, bool, error) {
	key := normalize(descriptor)
	if key == "" {
		key = "unknown"
	}
	r, ok := c.table[key]
	if !ok {
		return "", false, e.Invalid("triage.Classify", fmt.Sprintf("unknown condition %q", descriptor))
	}
	return r.Priority, r.IsEmergency, nil
}

func (c *Classifier) Descriptors() []string {
	out := make([]string, 0, len(c.table))
	for k := range c.table {
		out = append(out, k)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
