package content

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ids end up in DOM ids and URLs
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// FieldError is one defect in a portfolio record.
type FieldError struct {
	List  string
	Index int
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	if e.List == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("%s[%d].%s: %s", e.List, e.Index, e.Field, e.Msg)
}

type checker struct {
	errs []error
}

func (c *checker) add(list string, i int, field, format string, args ...any) {
	c.errs = append(c.errs, &FieldError{List: list, Index: i, Field: field, Msg: fmt.Sprintf(format, args...)})
}

func (c *checker) required(list string, i int, field, v string) {
	if v == "" {
		c.add(list, i, field, "required")
	}
}

func (c *checker) link(list string, i int, field, v string, optional bool) {
	if v == "" {
		if !optional {
			c.add(list, i, field, "required")
		}
		return
	}
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" {
		c.add(list, i, field, "invalid url %q", v)
	}
}

// ids checks each id for shape and uniqueness within its list.
func (c *checker) ids(list string, ids []string) {
	seen := make(map[string]int, len(ids))
	for i, id := range ids {
		if id == "" {
			c.add(list, i, "id", "required")
			continue
		}
		if !idPattern.MatchString(id) {
			c.add(list, i, "id", "%q must be lowercase letters, digits and dashes", id)
		}
		if first, ok := seen[id]; ok {
			c.add(list, i, "id", "duplicate id %q (first at index %d)", id, first)
			continue
		}
		seen[id] = i
	}
}

// Validate reports every missing field and duplicate id, joined into one error.
func (p *Portfolio) Validate() error {
	var c checker

	if p.Profile.Name == "" {
		c.add("", 0, "profile.name", "required")
	}
	linkIDs := make([]string, len(p.Profile.Links))
	for i, l := range p.Profile.Links {
		linkIDs[i] = l.ID
		c.link("profile.links", i, "url", l.URL, false)
	}
	c.ids("profile.links", linkIDs)

	skillIDs := make([]string, len(p.Skills))
	for i, s := range p.Skills {
		skillIDs[i] = s.ID
		c.required("skills", i, "title", s.Title)
		if len(s.Technologies) == 0 {
			c.add("skills", i, "technologies", "at least one entry required")
		}
	}
	c.ids("skills", skillIDs)

	projectIDs := make([]string, len(p.Projects))
	for i, pr := range p.Projects {
		projectIDs[i] = pr.ID
		c.required("projects", i, "title", pr.Title)
		c.required("projects", i, "description", pr.Description)
		c.link("projects", i, "github", pr.GitHubURL, true)
	}
	c.ids("projects", projectIDs)

	awardIDs := make([]string, len(p.Awards))
	for i, a := range p.Awards {
		awardIDs[i] = a.ID
		c.required("awards", i, "title", a.Title)
		c.required("awards", i, "achievement", a.Achievement)
	}
	c.ids("awards", awardIDs)

	if len(c.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid portfolio: %w", errors.Join(c.errs...))
}
