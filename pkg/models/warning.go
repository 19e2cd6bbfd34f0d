// Package models holds the result types shared between detectors, the
// driver and the output layer.
package models

import (
	"strings"

	"github.com/augurlint/augur/pkg/ast"
)

// Severity ranks a warning. The zero value is the lowest rank so that
// an unset severity never outranks a real one.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// ParseSeverity maps a config string to a Severity, defaulting to info.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Sharing is a detector's multi-project policy: whether a warning must
// appear in every configured project to be reported, or in any one.
type Sharing uint8

const (
	// ShareUnion keeps a warning raised by any project.
	ShareUnion Sharing = iota
	// ShareIntersect keeps a warning only when the identical message was
	// raised in every configured project.
	ShareIntersect
)

func (s Sharing) String() string {
	if s == ShareIntersect {
		return "intersect"
	}
	return "union"
}

// Warning is one detector finding.
type Warning struct {
	Detector   string       `json:"detector" toon:"detector"`
	Severity   Severity     `json:"severity" toon:"severity"`
	Message    string       `json:"message" toon:"message"`
	Location   ast.Location `json:"location" toon:"location"`
	Sharing    Sharing      `json:"-" toon:"-"`
	Project    string       `json:"project,omitempty" toon:"project,omitempty"`
	Suppressed bool         `json:"suppressed,omitempty" toon:"suppressed,omitempty"`
}

// Suppression silences warnings matched by detector id, file suffix,
// line and column.
type Suppression struct {
	Detector string `json:"detector" koanf:"detector"`
	File     string `json:"file" koanf:"file"`
	Line     int    `json:"line" koanf:"line"`
	Col      int    `json:"col" koanf:"col"`
}

// Matches reports whether the suppression applies to w.
func (s Suppression) Matches(w Warning) bool {
	return s.Detector == w.Detector &&
		strings.HasSuffix(w.Location.File, s.File) &&
		s.Line == w.Location.Line &&
		s.Col == w.Location.Col
}

// ToolOutput is the result of one tool plugin run over one project.
type ToolOutput struct {
	Tool    string `json:"tool" toon:"tool"`
	Project string `json:"project" toon:"project"`
	Output  string `json:"output" toon:"output"`
}

// Report is the reconciled result of a whole run.
type Report struct {
	Projects           []ProjectInfo `json:"projects" toon:"projects"`
	Warnings           []Warning     `json:"warnings" toon:"warnings"`
	Suppressed         []Warning     `json:"suppressed,omitempty" toon:"suppressed,omitempty"`
	UnusedSuppressions []Suppression `json:"unusedSuppressions,omitempty" toon:"unusedSuppressions,omitempty"`
}

// ProjectInfo identifies one analyzed project in the report header.
type ProjectInfo struct {
	Name        string `json:"name" toon:"name"`
	Revision    string `json:"revision,omitempty" toon:"revision,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty" toon:"fingerprint,omitempty"`
}
