package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/cardcsv/pkg/models"
	"github.com/yurifrl/cardcsv/pkg/transform"
)

// Settings are the per-job conversion switches. Nil switches inherit.
type Settings struct {
	Profile           string `yaml:"profile"`
	CleanReminderText *bool  `yaml:"clean_reminder_text"`
	KeywordsOnly      *bool  `yaml:"keywords_only"`
}

type Plan struct {
	Defaults Settings `yaml:"defaults"`
	Jobs     []Job    `yaml:"jobs"`

	dir string
}

type Job struct {
	Settings `yaml:",inline"`
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Jobs) == 0 {
		return nil, fmt.Errorf("plan has no jobs")
	}
	for i, job := range p.Jobs {
		if job.Input == "" {
			return nil, fmt.Errorf("job %d has no input", i+1)
		}
		if job.Output == "" {
			return nil, fmt.Errorf("job %d has no output", i+1)
		}
	}
	p.dir = filepath.Dir(path)
	return &p, nil
}

// Resolve returns the path relative to the plan file, leaving absolute
// paths, URLs and stdin untouched.
func (p *Plan) Resolve(path string) string {
	if path == "-" || filepath.IsAbs(path) || isURL(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

func isURL(path string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if len(path) > len(scheme) && path[:len(scheme)] == scheme {
			return true
		}
	}
	return false
}

// Profile returns the job profile, falling back to the plan defaults and
// then to the given name.
func (p *Plan) Profile(job Job, fallback string) (models.Profile, error) {
	name := fallback
	if p.Defaults.Profile != "" {
		name = p.Defaults.Profile
	}
	if job.Profile != "" {
		name = job.Profile
	}
	profile, err := models.LookupProfile(name)
	if err != nil {
		return models.Profile{}, err
	}
	return profile, profile.Validate()
}

// Options merges job switches over plan defaults over base.
func (p *Plan) Options(job Job, base transform.Options) transform.Options {
	opts := base
	for _, s := range []Settings{p.Defaults, job.Settings} {
		if s.CleanReminderText != nil {
			opts.StripReminderText = *s.CleanReminderText
		}
		if s.KeywordsOnly != nil {
			opts.KeywordsOnly = *s.KeywordsOnly
		}
	}
	return opts
}

func (p *Plan) Print() {
	fmt.Printf("Defaults: profile=%s\n", valueOr(p.Defaults.Profile, "(config)"))
	for i, job := range p.Jobs {
		fmt.Printf("[%d] input=%s output=%s profile=%s\n", i+1, job.Input, job.Output, valueOr(job.Profile, "(default)"))
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
