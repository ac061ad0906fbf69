package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sitemapOut string

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write sitemap.xml for the storefront",
	Long:  `Builds the sitemap from active products and published blog posts and writes it to --out, or stdout when omitted.`,
	Run:   writeSitemap,
}

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapOut, "out", "o", "", "output file | example: --out=public/sitemap.xml")
	rootCmd.AddCommand(sitemapCmd)
}

func writeSitemap(_ *cobra.Command, _ []string) {
	defer StopApp()

	body, err := sitemapBuilder.Render(appCtx)
	if err != nil {
		logrus.Fatalf("[SITEMAP] Failed to render: %v", err)
	}

	if sitemapOut == "" {
		if _, err := os.Stdout.Write(body); err != nil {
			logrus.Fatalf("[SITEMAP] Failed to write: %v", err)
		}
		return
	}

	if err := os.WriteFile(sitemapOut, body, 0644); err != nil {
		logrus.Fatalf("[SITEMAP] Failed to write %s: %v", sitemapOut, err)
	}
	logrus.Infof("[SITEMAP] Sitemap written to %s (%d URLs)", sitemapOut, len(sitemapBuilder.Build(appCtx).URLs))
}
