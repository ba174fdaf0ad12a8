package domain

import (
	"errors"
	"regexp"
	"time"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
	ProjectDraft    ProjectStatus = "draft"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectInactive  = errors.New("project is not active")
	ErrForbidden        = errors.New("access to project denied")
	ErrTaskNotFound     = errors.New("import task not found")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrInvalidSlug      = errors.New("invalid project slug")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether s is in the alphabet project slugs are generated in.
// Live topics and storefront paths are keyed by slug, so nothing else is accepted there.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

type Project struct {
	ID        string        `bson:"_id" json:"id"`
	UserID    string        `bson:"user_id" json:"user_id"`
	Slug      string        `bson:"slug" json:"slug"`
	Name      string        `bson:"name" json:"name"`
	Config    Configuration `bson:"config" json:"config"`
	Status    ProjectStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

func (p *Project) IsActive() bool {
	return p.Status == ProjectActive
}

// ProjectUpdate holds the optional fields of a project update; nil means unchanged.
type ProjectUpdate struct {
	Name   *string
	Status *ProjectStatus
}
