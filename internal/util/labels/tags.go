package labels

import (
	"fmt"
	"maps"
	"strings"
)

// Standard tag keys. Azure tag names may not contain '/', so the keys use a
// dash-separated prefix instead of a domain.
const (
	// KeyLab identifies which lab instance a resource belongs to.
	KeyLab = "akslab-lab"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "akslab-managed-by"

	// KeyEnvironment marks the purpose of the deployment.
	KeyEnvironment = "environment"
)

const (
	ManagedByAkslab    = "akslab"
	EnvironmentLab     = "lab"
	maxTagNameLength   = 512
	maxTagValueLength  = 256
	maxTagsPerResource = 50
)

// forbiddenTagChars are rejected in tag names by Resource Manager.
const forbiddenTagChars = `<>%&\?/`

// TagBuilder provides a fluent interface for building Azure resource tags.
type TagBuilder struct {
	tags map[string]string
}

// NewTagBuilder creates a builder with the lab suffix and manager pre-set.
func NewTagBuilder(suffix string) *TagBuilder {
	return &TagBuilder{
		tags: map[string]string{
			KeyLab:         suffix,
			KeyManagedBy:   ManagedByAkslab,
			KeyEnvironment: EnvironmentLab,
		},
	}
}

// Merge adds all tags from the provided map. User tags win over defaults,
// except the lab identity keys (KeyLab, KeyManagedBy), which never change.
func (tb *TagBuilder) Merge(extra map[string]string) *TagBuilder {
	for k, v := range extra {
		if Reserved(k) {
			continue
		}
		tb.tags[k] = v
	}
	return tb
}

// Reserved reports whether key is a lab identity tag set by akslab itself.
func Reserved(key string) bool {
	return strings.EqualFold(key, KeyLab) || strings.EqualFold(key, KeyManagedBy)
}

// Build returns a copy of the tag map.
func (tb *TagBuilder) Build() map[string]string {
	return maps.Clone(tb.tags)
}

// Validate checks tags against the Resource Manager limits.
func Validate(tags map[string]string) error {
	if len(tags) > maxTagsPerResource {
		return fmt.Errorf("too many tags: %d (max %d)", len(tags), maxTagsPerResource)
	}
	for k, v := range tags {
		if k == "" {
			return fmt.Errorf("tag name must not be empty")
		}
		if len(k) > maxTagNameLength {
			return fmt.Errorf("tag name %q exceeds %d characters", k, maxTagNameLength)
		}
		if strings.ContainsAny(k, forbiddenTagChars) {
			return fmt.Errorf("tag name %q contains one of %q", k, forbiddenTagChars)
		}
		if len(v) > maxTagValueLength {
			return fmt.Errorf("tag %q value exceeds %d characters", k, maxTagValueLength)
		}
	}
	return nil
}

// Parse reads tags in key=value form, as passed on the command line.
func Parse(pairs []string) (map[string]string, error) {
	tags := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q: expected key=value", p)
		}
		tags[k] = strings.TrimSpace(v)
	}
	return tags, nil
}
