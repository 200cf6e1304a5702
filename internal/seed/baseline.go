// Package seed reconciles a declarative baseline dataset into the database
// and generates fake members for demos.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"clubhouse/internal/models"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed baseline.yaml
var defaultBaseline []byte

type Baseline struct {
	Users  []UserSpec `yaml:"users"`
	Clubs  []ClubSpec `yaml:"clubs"`
	Remove RemoveSpec `yaml:"remove"`
}

type UserSpec struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ClubSpec declares a club by name. A club persisted under one of
// PreviousNames is renamed instead of duplicated.
type ClubSpec struct {
	Name          string      `yaml:"name"`
	PreviousNames []string    `yaml:"previous_names"`
	Description   string      `yaml:"description"`
	ImageURL      string      `yaml:"image_url"`
	President     string      `yaml:"president"`
	Members       []string    `yaml:"members"`
	Events        []EventSpec `yaml:"events"`
}

type EventSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Location    string   `yaml:"location"`
	ImageURL    string   `yaml:"image_url"`
	Attendees   []string `yaml:"attendees"`
}

type RemoveSpec struct {
	Clubs []string `yaml:"clubs"`
}

// Default returns the baseline embedded in the binary.
func Default() (*Baseline, error) {
	return Parse(defaultBaseline)
}

// Load reads a baseline file, falling back to the embedded one when path is empty.
func Load(path string) (*Baseline, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a baseline document. Unknown keys are rejected.
func Parse(data []byte) (*Baseline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var b Baseline
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parse seed baseline: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks that every referenced username is declared and that names
// and dates are well formed.
func (b *Baseline) Validate() error {
	var errs error
	users := make(map[string]bool, len(b.Users))
	for i, u := range b.Users {
		if u.Username == "" || u.Email == "" || u.Password == "" {
			errs = multierr.Append(errs, fmt.Errorf("users[%d]: username, email and password are required", i))
			continue
		}
		if users[u.Username] {
			errs = multierr.Append(errs, fmt.Errorf("users[%d]: duplicate username %q", i, u.Username))
		}
		users[u.Username] = true
		if u.Role != "" {
			if _, ok := models.ParseRole(u.Role); !ok {
				errs = multierr.Append(errs, fmt.Errorf("user %q: unknown role %q", u.Username, u.Role))
			}
		}
	}

	known := func(where, username string) {
		if !users[username] {
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown user %q", where, username))
		}
	}

	clubs := make(map[string]bool, len(b.Clubs))
	for _, c := range b.Clubs {
		if c.Name == "" {
			errs = multierr.Append(errs, errors.New("club with empty name"))
			continue
		}
		if clubs[c.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate club %q", c.Name))
		}
		clubs[c.Name] = true

		if c.President != "" {
			known("club "+c.Name+" president", c.President)
		}
		for _, m := range c.Members {
			known("club "+c.Name+" members", m)
		}
		for _, e := range c.Events {
			where := fmt.Sprintf("club %s event %q", c.Name, e.Name)
			if e.Name == "" {
				errs = multierr.Append(errs, fmt.Errorf("club %s: event with empty name", c.Name))
			}
			if _, err := parseDate(e.Date); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", where, err))
			}
			for _, a := range e.Attendees {
				known(where+" attendees", a)
			}
		}
	}
	for _, name := range b.Remove.Clubs {
		if clubs[name] {
			errs = multierr.Append(errs, fmt.Errorf("club %q is both declared and removed", name))
		}
	}
	return errs
}
