package cmd

import (
	coreconfig "github.com/mervel/storefront/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var skipSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the database and seed the launch catalog",
	Long:  `Runs the schema migrations, inserts the launch products that are missing and bootstraps the admin account from ADMIN_EMAIL / ADMIN_PASSWORD.`,
	Run:   migrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "only migrate the schema")
	rootCmd.AddCommand(migrateCmd)
}

func migrate(_ *cobra.Command, _ []string) {
	defer StopApp()
	cfg := coreconfig.Global

	logrus.Info("[MIGRATION] Schema is up to date")

	if skipSeed {
		return
	}

	created, err := productService.Seed(appCtx)
	if err != nil {
		logrus.Fatalf("[MIGRATION] Failed to seed catalog: %v", err)
	}
	logrus.Infof("[MIGRATION] Seeded %d products", created)

	if cfg.Security.AdminEmail == "" || cfg.Security.AdminPassword == "" {
		logrus.Warn("[MIGRATION] ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}
	admin, err := authService.EnsureAdmin(appCtx, cfg.Security.AdminEmail, cfg.Security.AdminPassword)
	if err != nil {
		logrus.Fatalf("[MIGRATION] Failed to bootstrap admin: %v", err)
	}
	logrus.Infof("[MIGRATION] Admin account ready: %s", admin.Email)
}
