package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/godilite/feedback-server/internal/repository/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Seed is the initial data loaded by `feedbackd seed` and, when SEED_FILE is
// set, at startup.
type Seed struct {
	Centers []models.ServiceCenter `yaml:"centers"`
	Admin   *SeedAdmin             `yaml:"admin"`
}

type SeedAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// DefaultSeed lists the three service centers the dashboard was built for.
// It carries no admin account.
func DefaultSeed() *Seed {
	return &Seed{
		Centers: []models.ServiceCenter{
			{ID: "mdy", Name: "1.Care MDY", Location: "Mandalay"},
			{ID: "ygn", Name: "1.Care YGN", Location: "Yangon"},
			{ID: "mlm", Name: "1.Care MLM", Location: "Mawlamyine"},
		},
	}
}

// ParseSeed decodes a YAML seed document. Unknown keys are rejected so that
// typos do not silently drop data.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSeed reads a seed file from disk.
func LoadSeed(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

func (s *Seed) validate() error {
	seen := make(map[string]bool, len(s.Centers))
	for i, c := range s.Centers {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed center %d: id and name are required", i+1)
		}
		if seen[c.ID] {
			return fmt.Errorf("seed center %q listed twice", c.ID)
		}
		seen[c.ID] = true
	}
	if s.Admin != nil && (s.Admin.Email == "" || s.Admin.Password == "") {
		return fmt.Errorf("seed admin: email and password are required")
	}
	return nil
}

// Seed upserts the seed centers and creates the admin account if it does not
// exist yet. Running it twice is harmless.
func (a *App) Seed(ctx context.Context, s *Seed) error {
	if err := a.Admin.SeedCenters(ctx, s.Centers); err != nil {
		return fmt.Errorf("seed centers: %w", err)
	}

	if s.Admin == nil {
		return nil
	}
	created, err := a.Admin.EnsureAdmin(ctx, s.Admin.Name, s.Admin.Email, s.Admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		a.logger.Info("admin account created", zap.String("email", s.Admin.Email))
	}
	return nil
}
