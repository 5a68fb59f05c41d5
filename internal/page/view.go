// Package page composes the portfolio sections for one page load and keeps
// the live page views of the process.
package page

import (
	"sync"
	"time"

	"github.com/Zachkp/dev-portfolio/internal/content"
	"github.com/Zachkp/dev-portfolio/internal/reveal"
	"github.com/Zachkp/dev-portfolio/internal/theme"
)

// View is one mounted page. Sections are laid out in a fixed order and each
// owns its reveal; the view does no cross-section coordination.
type View struct {
	ID        string
	Portfolio *content.Portfolio
	Theme     *theme.Controller

	Hero           *Hero
	SkillsHeader   *SectionHeader
	Skills         []*SkillCard
	ProjectsHeader *SectionHeader
	Projects       []*ProjectCard
	Awards         *AwardsSection
	Footer         *Footer

	observer   *reveal.Observer
	components map[string]Component
	order      []Component

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// RevealFunc is told about each component the first time it is revealed.
type RevealFunc func(v *View, c Component)

// New mounts every section of p and attaches its reveal to a fresh observer.
func New(id string, p *content.Portfolio, mode theme.Mode, onReveal RevealFunc) *View {
	now := time.Now()
	v := &View{
		ID:         id,
		Portfolio:  p,
		Theme:      theme.NewController(mode),
		observer:   reveal.NewObserver(),
		components: make(map[string]Component),
		lastSeen:   now,
	}

	v.Hero = newHero(id, p.Profile)
	v.SkillsHeader = newHeader(id, "skills-heading", "Technical Skills", "")
	delays := reveal.Staggers(len(p.Skills), SkillStep)
	for i, g := range p.Skills {
		v.Skills = append(v.Skills, newSkillCard(id, g, i, delays[i]))
	}
	v.ProjectsHeader = newHeader(id, "projects-heading", "Featured Projects",
		"A collection of projects showcasing my expertise in full-stack development, AI, and mobile applications.")
	for i, pr := range p.Projects {
		v.Projects = append(v.Projects, newProjectCard(id, pr, i))
	}
	v.Awards = newAwards(id, p.Awards)
	v.Footer = newFooter(id, p.Profile)

	v.mount(v.Hero)
	v.mount(v.SkillsHeader)
	for _, c := range v.Skills {
		v.mount(c)
	}
	v.mount(v.ProjectsHeader)
	for _, c := range v.Projects {
		v.mount(c)
	}
	v.mount(v.Awards)
	v.mount(v.Footer)

	if onReveal != nil {
		for _, c := range v.order {
			c := c
			c.Reveal().OnReveal(func() { onReveal(v, c) })
		}
	}
	return v
}

func (v *View) mount(c Component) {
	v.components[c.ID()] = c
	v.order = append(v.order, c)
	c.Reveal().Attach(v.observer, c.ID())
}

// Components returns the components in page order.
func (v *View) Components() []Component {
	out := make([]Component, len(v.order))
	copy(out, v.order)
	return out
}

// Component looks up a component by DOM id.
func (v *View) Component(id string) (Component, bool) {
	c, ok := v.components[id]
	return c, ok
}

// Dispatch feeds an intersection entry to the view's observer and returns the
// targeted component.
func (v *View) Dispatch(e reveal.Entry) (Component, bool) {
	c, ok := v.components[e.Target]
	if !ok {
		return nil, false
	}
	v.observer.Dispatch(e)
	return c, true
}

// Watching returns the number of live observer registrations.
func (v *View) Watching() int {
	return v.observer.Len()
}

// Close unmounts the view: every watch is released and none fires afterwards.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	for _, c := range v.order {
		c.Reveal().Detach()
	}
	v.observer.Disconnect()
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}
