package main

import (
	"github.com/godilite/feedback-server/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type SeedFlags struct {
	File          string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func (f *SeedFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.File, "file", f.File, "YAML seed file (defaults to SEED_FILE, then the built-in centers)")
	fs.StringVar(&f.AdminName, "admin-name", "Admin", "name of the admin account created when --admin-email is set")
	fs.StringVar(&f.AdminEmail, "admin-email", "", "create this admin account unless it exists")
	fs.StringVar(&f.AdminPassword, "admin-password", "", "password for --admin-email")
}

func (f *SeedFlags) load(fallbackFile string) (*app.Seed, error) {
	file := f.File
	if file == "" {
		file = fallbackFile
	}
	seed := app.DefaultSeed()
	if file != "" {
		var err error
		if seed, err = app.LoadSeed(file); err != nil {
			return nil, err
		}
	}
	if f.AdminEmail != "" {
		seed.Admin = &app.SeedAdmin{Name: f.AdminName, Email: f.AdminEmail, Password: f.AdminPassword}
	}
	return seed, nil
}

func newSeedCmd(c *cli) *cobra.Command {
	f := &SeedFlags{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load service centers and the initial admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := f.load(c.cfg.SeedFile)
			if err != nil {
				return err
			}
			a, err := app.NewApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Seed(cmd.Context(), seed)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
