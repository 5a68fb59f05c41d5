// Package content holds the static portfolio records rendered by the page:
// profile, skill groups, projects and awards. Records are read once and never
// mutated afterwards.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var defaultPortfolio []byte

// Link is an outbound link (repository, social profile, mailto).
type Link struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon"`
	URL   string `yaml:"url" json:"url"`
}

type Profile struct {
	Name      string `yaml:"name" json:"name"`
	Initials  string `yaml:"initials" json:"initials"`
	Headline  string `yaml:"headline" json:"headline"`
	Bio       string `yaml:"bio" json:"bio"`
	Email     string `yaml:"email" json:"email"`
	Tagline   string `yaml:"tagline" json:"tagline"`
	Copyright string `yaml:"copyright" json:"copyright"`
	Links     []Link `yaml:"links" json:"links"`
}

// Mailto returns the mailto: URL for the profile email, or "" without one.
func (p Profile) Mailto() string {
	if p.Email == "" {
		return ""
	}
	return "mailto:" + p.Email
}

type SkillGroup struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Icon         string   `yaml:"icon" json:"icon"`
	Color        string   `yaml:"color" json:"color"`
	Technologies []string `yaml:"technologies" json:"technologies"`
}

type Project struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Category     string   `yaml:"category" json:"category"`
	Color        string   `yaml:"color" json:"color"`
	Description  string   `yaml:"description" json:"description"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	GitHubURL    string   `yaml:"github" json:"github"`
	ImageAlt     string   `yaml:"image_alt" json:"image_alt"`

	// DescriptionHTML is Description rendered from markdown at load time.
	DescriptionHTML template.HTML `yaml:"-" json:"-"`
}

type Award struct {
	ID          string `yaml:"id" json:"id"`
	Emoji       string `yaml:"emoji" json:"emoji"`
	Title       string `yaml:"title" json:"title"`
	Achievement string `yaml:"achievement" json:"achievement"`
	Details     string `yaml:"details" json:"details"`
}

// Portfolio is every record the page renders.
type Portfolio struct {
	Profile  Profile      `yaml:"profile" json:"profile"`
	Skills   []SkillGroup `yaml:"skills" json:"skills"`
	Projects []Project    `yaml:"projects" json:"projects"`
	Awards   []Award      `yaml:"awards" json:"awards"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse decodes a portfolio from YAML (JSON is valid YAML), validates it and
// renders markdown fields.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i := range p.Projects {
		html, err := Markdown(p.Projects[i].Description)
		if err != nil {
			return nil, fmt.Errorf("project %q description: %w", p.Projects[i].ID, err)
		}
		p.Projects[i].DescriptionHTML = html
	}
	return &p, nil
}

// Load reads a portfolio file. An empty path loads the built-in portfolio.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Default returns the built-in portfolio.
func Default() (*Portfolio, error) {
	return Parse(defaultPortfolio)
}

// Markdown renders a markdown snippet to HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
