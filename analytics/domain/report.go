package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	catalog "github.com/mervel/storefront/catalog/domain"
	orders "github.com/mervel/storefront/orders/domain"
)

const (
	// LowStockThreshold marks a product as low on the dashboard and critical in catalog analytics.
	LowStockThreshold = 20
	// WatchStockThreshold marks a product as low in catalog analytics.
	WatchStockThreshold = 50
	// StockWatchlistSize is how many of the lowest-stock products are reported.
	StockWatchlistSize = 10
	// DashboardRecentOrders is how many orders the dashboard lists.
	DashboardRecentOrders = 5

	StockCritical = "critical"
	StockLow      = "low"
	StockGood     = "good"

	uncategorized = "other"
)

// priceBands are upper bounds (exclusive) on a product's cheapest variant.
var priceBands = []int64{1500, 3000, 5000}

type RecentOrder struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customer_name"`
	Total        int64         `json:"total"`
	Status       orders.Status `json:"status"`
	CreatedAt    string        `json:"created_at"`
}

type Dashboard struct {
	TotalProducts     int            `json:"total_products"`
	TotalOrders       int64          `json:"total_orders"`
	RecentRevenue     int64          `json:"recent_revenue"`
	LowStockCount     int            `json:"low_stock_count"`
	RecentOrders      []RecentOrder  `json:"recent_orders"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
}

type CategoryStat struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type StockStat struct {
	Name   string `json:"name"`
	Stock  int    `json:"stock"`
	Status string `json:"status"`
}

type PriceRange struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type CatalogReport struct {
	Categories  []CategoryStat `json:"category_data"`
	Stock       []StockStat    `json:"stock_data"`
	PriceRanges []PriceRange   `json:"price_range_data"`
	TotalValue  int64          `json:"total_value"`
	AvgPrice    int64          `json:"avg_price"`
	TotalStock  int            `json:"total_stock"`
}

// BuildDashboard summarizes the catalog and the most recent orders.
// RecentRevenue only covers the orders passed in.
func BuildDashboard(products []*catalog.Product, recent []*orders.Order, totalOrders int64) Dashboard {
	d := Dashboard{
		TotalProducts:     len(products),
		TotalOrders:       totalOrders,
		CategoryBreakdown: map[string]int{},
		RecentOrders:      []RecentOrder{},
	}
	for _, p := range products {
		d.CategoryBreakdown[categoryOf(p)]++
		if p.Stock < LowStockThreshold {
			d.LowStockCount++
		}
	}
	for i, o := range recent {
		d.RecentRevenue += o.Total
		if i < DashboardRecentOrders {
			d.RecentOrders = append(d.RecentOrders, RecentOrder{
				ID:           o.ID,
				CustomerName: o.CustomerName,
				Total:        o.Total,
				Status:       o.Status,
				CreatedAt:    o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			})
		}
	}
	return d
}

// BuildCatalogReport values stock at each product's most expensive variant and
// buckets products by their cheapest one.
func BuildCatalogReport(products []*catalog.Product, currency string) CatalogReport {
	r := CatalogReport{}
	byCategory := map[string]*CategoryStat{}
	counts := make([]int, len(priceBands)+1)
	var totalPrices int64

	for _, p := range products {
		minPrice, maxPrice := p.MinPrice(), p.MaxPrice()
		stock := p.Stock
		if stock < 0 {
			stock = 0
		}
		value := maxPrice * int64(stock)

		cat := categoryOf(p)
		stat, ok := byCategory[cat]
		if !ok {
			stat = &CategoryStat{Name: titleCase(cat)}
			byCategory[cat] = stat
		}
		stat.Count++
		stat.Revenue += value

		r.TotalValue += value
		r.TotalStock += stock
		totalPrices += minPrice
		counts[bandOf(minPrice)]++

		r.Stock = append(r.Stock, StockStat{Name: p.Name, Stock: stock, Status: StockStatus(stock)})
	}

	r.Categories = make([]CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		r.Categories = append(r.Categories, *stat)
	}
	sort.Slice(r.Categories, func(i, j int) bool { return r.Categories[i].Name < r.Categories[j].Name })

	sort.SliceStable(r.Stock, func(i, j int) bool { return r.Stock[i].Stock < r.Stock[j].Stock })
	if len(r.Stock) > StockWatchlistSize {
		r.Stock = r.Stock[:StockWatchlistSize]
	}
	if r.Stock == nil {
		r.Stock = []StockStat{}
	}

	labels := bandLabels(currency)
	r.PriceRanges = make([]PriceRange, len(labels))
	for i, label := range labels {
		r.PriceRanges[i] = PriceRange{Range: label, Count: counts[i]}
	}

	if len(products) > 0 {
		r.AvgPrice = roundDiv(totalPrices, int64(len(products)))
	}
	return r
}

func StockStatus(stock int) string {
	switch {
	case stock < LowStockThreshold:
		return StockCritical
	case stock < WatchStockThreshold:
		return StockLow
	default:
		return StockGood
	}
}

func bandOf(price int64) int {
	for i, upper := range priceBands {
		if price < upper {
			return i
		}
	}
	return len(priceBands)
}

func bandLabels(currency string) []string {
	money := func(v int64) string {
		return strings.TrimSpace(fmt.Sprintf("%s %s", currency, humanize.Comma(v)))
	}
	labels := make([]string, 0, len(priceBands)+1)
	labels = append(labels, "Under "+money(priceBands[0]))
	for i := 1; i < len(priceBands); i++ {
		labels = append(labels, money(priceBands[i-1])+" - "+money(priceBands[i]))
	}
	return append(labels, "Over "+money(priceBands[len(priceBands)-1]))
}

func categoryOf(p *catalog.Product) string {
	if p.Category == "" {
		return uncategorized
	}
	return p.Category
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// roundDiv rounds half away from zero for non-negative operands.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
