package cmd

import (
	"time"

	imageryApp "github.com/mervel/storefront/imagery/application"
	"github.com/sirupsen/logrus"
)

// preloadCatalogImages warms the image cache for active products without an uploaded image.
func preloadCatalogImages() {
	// Small delay so the server is listening before generation starts
	time.Sleep(5 * time.Second)

	listings, err := productService.ListActive(appCtx, "")
	if err != nil {
		logrus.WithError(err).Error("[IMAGERY] Failed to list products for preload")
		return
	}

	items := make([]imageryApp.PreloadItem, 0, len(listings))
	for _, l := range listings {
		if l.ImageURL != "" {
			continue
		}
		items = append(items, imageryApp.PreloadItem{ProductID: l.Slug, Category: l.Category})
	}
	if len(items) == 0 {
		return
	}
	res := imageService.Preload(appCtx, items)
	logrus.Infof("[IMAGERY] Boot preload queued %d, skipped %d", len(res.Queued), len(res.Skipped))
}
