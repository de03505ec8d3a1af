// Package project models the projects and builds the CI server reports on.
// Values are read-only once constructed.
package project

import (
	"fmt"
	"strings"
)

// Status is the outcome of a build.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSuccess:
		return StatusSuccess, nil
	case StatusFailed:
		return StatusFailed, nil
	}
	return "", fmt.Errorf("unknown build status %q (must be success or failed)", s)
}

// Project is a named build target.
type Project struct {
	name string
}

// New returns the project called name.
func New(name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, fmt.Errorf("project name is required")
	}
	if strings.Contains(name, "/") {
		return Project{}, fmt.Errorf("project name %q must not contain '/'", name)
	}
	return Project{name: name}, nil
}

// Name returns the project name.
func (p Project) Name() string { return p.name }

// Build is one execution of a project's build.
type Build struct {
	project Project
	label   int
	status  Status
	output  string
}

// NewBuild returns build label of p with the given outcome and captured log.
func NewBuild(p Project, label int, status Status, output string) (*Build, error) {
	if p.name == "" {
		return nil, fmt.Errorf("build requires a project")
	}
	if label <= 0 {
		return nil, fmt.Errorf("build label must be positive, got %d", label)
	}
	if status != StatusSuccess && status != StatusFailed {
		return nil, fmt.Errorf("unknown build status %q", status)
	}
	return &Build{project: p, label: label, status: status, output: output}, nil
}

// Project returns the owning project.
func (b *Build) Project() Project { return b.project }

// ProjectName returns the owning project's name.
func (b *Build) ProjectName() string { return b.project.name }

// Label returns the build number.
func (b *Build) Label() int { return b.label }

// Status returns the build outcome.
func (b *Build) Status() Status { return b.status }

// Failed reports whether the build failed.
func (b *Build) Failed() bool { return b.status == StatusFailed }

// Output returns the captured build log.
func (b *Build) Output() string { return b.output }

// String returns "<project> build <label>".
func (b *Build) String() string {
	return fmt.Sprintf("%s build %d", b.project.name, b.label)
}
