package page

import (
	"fmt"
	"html/template"

	"github.com/Zachkp/dev-portfolio/internal/content"
	"github.com/Zachkp/dev-portfolio/internal/reveal"
)

// Stagger steps between sibling cards, in seconds.
const (
	SkillStep = 0.1
	AwardStep = 0.2
	LineStep  = 0.1
)

// Trigger tells the client which primitive drives a component's reveal.
type Trigger string

const (
	// Intersect reveals on the first viewport crossing.
	Intersect Trigger = "intersect"
	// Load reveals a fixed delay after the page loads.
	Load Trigger = "load"
)

// Component is one independently revealed unit of the page.
type Component interface {
	// ID is both the DOM id and the observer target.
	ID() string
	// Template names the fragment that renders the component.
	Template() string
	Reveal() *reveal.Reveal
	Visible() bool
}

var (
	intersectOpts = reveal.Options{Threshold: 0.1}
	cardOpts      = reveal.Options{Threshold: 0.1, RootMargin: reveal.MustMargin("0px 0px -50px 0px")}
	projectOpts   = reveal.Options{Threshold: 0.1, RootMargin: reveal.MustMargin("0px 0px -100px 0px")}
	onScreenOpts  = reveal.Options{}
)

type base struct {
	id       string
	tmpl     string
	viewID   string
	trigger  Trigger
	delayMS  int
	revealer *reveal.Reveal
}

func newBase(viewID, id, tmpl string, opts reveal.Options) base {
	return base{id: id, tmpl: tmpl, viewID: viewID, trigger: Intersect, revealer: reveal.New(opts)}
}

func (b *base) ID() string { return b.id }
func (b *base) Template() string { return b.tmpl }
func (b *base) Reveal() *reveal.Reveal { return b.revealer }
func (b *base) Visible() bool { return b.revealer.Visible() }
func (b *base) Trigger() Trigger { return b.trigger }
func (b *base) TriggerDelayMS() int { return b.delayMS }
func (b *base) Threshold() float64 { return b.revealer.Options().Threshold }
func (b *base) RootMargin() string { return b.revealer.Options().RootMargin.String() }
func (b *base) RevealURL() string { return fmt.Sprintf("/views/%s/reveal/%s", b.viewID, b.id) }
func (b *base) Phase() string { return b.revealer.Phase().String() }
func (b *base) sub(suffix string) string { return b.id + "-" + suffix }

func (b *base) style(m reveal.Motion) template.CSS {
	return template.CSS(m.At(b.Visible()).Style())
}

// Line is a staggered child row: a technology line or badge.
type Line struct {
	ID    string
	Text  string
	Style template.CSS
	First bool
}

func (b *base) lines(items []string, m reveal.Motion, start float64) []Line {
	out := make([]Line, len(items))
	for i, text := range items {
		out[i] = Line{
			ID:    b.sub(fmt.Sprintf("line-%d", i)),
			Text:  text,
			Style: b.style(m.Delayed(start + reveal.Stagger(i, LineStep))),
			First: i == 0,
		}
	}
	return out
}

// Hero is revealed a moment after load rather than by scrolling.
type Hero struct {
	base
	Profile content.Profile
}

func newHero(viewID string, p content.Profile) *Hero {
	h := &Hero{base: newBase(viewID, "hero", "hero", onScreenOpts), Profile: p}
	h.trigger = Load
	h.delayMS = 300
	return h
}

func (h *Hero) HeadingStyle() template.CSS { return h.style(reveal.Rise(50, 0.8)) }
func (h *Hero) HeadlineStyle() template.CSS { return h.style(reveal.Rise(30, 0.8).Delayed(0.2)) }
func (h *Hero) BioStyle() template.CSS { return h.style(reveal.Rise(30, 0.8).Delayed(0.4)) }
func (h *Hero) LinksStyle() template.CSS { return h.style(reveal.Rise(30, 0.8).Delayed(0.6)) }

// SectionHeader is the heading block above a card list.
type SectionHeader struct {
	base
	Title    string
	Subtitle string
}

func newHeader(viewID, id, title, subtitle string) *SectionHeader {
	return &SectionHeader{base: newBase(viewID, id, "section-header", intersectOpts), Title: title, Subtitle: subtitle}
}

func (s *SectionHeader) TitleStyle() template.CSS { return s.style(reveal.Rise(50, 0.8)) }
func (s *SectionHeader) SubtitleStyle() template.CSS { return s.style(reveal.Rise(30, 0.8).Delayed(0.2)) }

type SkillCard struct {
	base
	Group content.SkillGroup
	Index int
	Delay float64
}

func newSkillCard(viewID string, g content.SkillGroup, i int, delay float64) *SkillCard {
	return &SkillCard{
		base:  newBase(viewID, "skill-"+g.ID, "skill-card", cardOpts),
		Group: g,
		Index: i,
		Delay: delay,
	}
}

func (c *SkillCard) Motion() reveal.Motion { return reveal.Rise(50, 0.6).Delayed(c.Delay) }
func (c *SkillCard) Style() template.CSS { return c.style(c.Motion()) }

// Technologies slide in one after another, starting with the card.
func (c *SkillCard) Technologies() []Line {
	return c.lines(c.Group.Technologies, reveal.Slide(-20, 0.4), c.Delay)
}

type ProjectCard struct {
	base
	Project  content.Project
	Index    int
	Reversed bool
}

func newProjectCard(viewID string, p content.Project, i int) *ProjectCard {
	return &ProjectCard{
		base:     newBase(viewID, "project-"+p.ID, "project-card", projectOpts),
		Project:  p,
		Index:    i,
		Reversed: i%2 != 0,
	}
}

// slide is the horizontal offset for the media panel; the text panel uses
// the opposite.
func (c *ProjectCard) slide() float64 {
	if c.Reversed {
		return 50
	}
	return -50
}

func (c *ProjectCard) Style() template.CSS { return c.style(reveal.Fade(0.8)) }
func (c *ProjectCard) MediaStyle() template.CSS { return c.style(reveal.Slide(c.slide(), 0.8).Delayed(0.2)) }
func (c *ProjectCard) TextStyle() template.CSS { return c.style(reveal.Slide(-c.slide(), 0.8).Delayed(0.4)) }
func (c *ProjectCard) MediaID() string { return c.sub("media") }
func (c *ProjectCard) TextID() string { return c.sub("text") }

func (c *ProjectCard) Badges() []Line {
	pop := reveal.Motion{
		Initial:    reveal.Keyframe{Opacity: 0, Scale: 0.8},
		Animate:    reveal.Shown,
		Transition: reveal.Transition{Duration: 0.4, Ease: reveal.EaseOut},
	}
	return c.lines(c.Project.Technologies, pop, 0.6)
}

// AwardsSection reveals all of its cards together; the cards only differ by
// their stagger delay.
type AwardsSection struct {
	base
	Title string
	Cards []*AwardCard
}

func newAwards(viewID string, awards []content.Award) *AwardsSection {
	s := &AwardsSection{
		base:  newBase(viewID, "awards", "awards", cardOpts),
		Title: "Awards & Recognition",
	}
	delays := reveal.Staggers(len(awards), AwardStep)
	for i, a := range awards {
		s.Cards = append(s.Cards, &AwardCard{section: &s.base, Award: a, Index: i, Delay: delays[i]})
	}
	return s
}

func (s *AwardsSection) TitleStyle() template.CSS { return s.style(reveal.Rise(50, 0.8)) }

type AwardCard struct {
	section *base
	Award   content.Award
	Index   int
	Delay   float64
}

func (c *AwardCard) ID() string { return "award-" + c.Award.ID }

func (c *AwardCard) Motion() reveal.Motion {
	return reveal.Motion{
		Initial:    reveal.Keyframe{Opacity: 0, Y: 50, Scale: 0.9},
		Animate:    reveal.Shown,
		Transition: reveal.Transition{Duration: 0.6, Delay: c.Delay, Ease: reveal.EaseOut},
	}
}

func (c *AwardCard) Style() template.CSS { return c.section.style(c.Motion()) }

func (c *AwardCard) AchievementStyle() template.CSS {
	return c.section.style(reveal.Fade(0.4).Delayed(c.Delay + 0.2))
}

func (c *AwardCard) DetailsStyle() template.CSS {
	return c.section.style(reveal.Fade(0.4).Delayed(c.Delay + 0.3))
}

// Footer reveals once, as soon as any part of it is on screen.
type Footer struct {
	base
	Profile content.Profile
}

func newFooter(viewID string, p content.Profile) *Footer {
	return &Footer{base: newBase(viewID, "footer", "footer", onScreenOpts), Profile: p}
}

func (f *Footer) Style() template.CSS { return f.style(reveal.Rise(50, 0.8)) }
func (f *Footer) HeadingStyle() template.CSS { return f.style(reveal.Rise(30, 0.6).Delayed(0.2)) }
func (f *Footer) TaglineStyle() template.CSS { return f.style(reveal.Rise(20, 0.6).Delayed(0.3)) }
func (f *Footer) LinksStyle() template.CSS { return f.style(reveal.Rise(20, 0.6).Delayed(0.4)) }
func (f *Footer) CopyrightStyle() template.CSS { return f.style(reveal.Fade(0.6).Delayed(0.6)) }
