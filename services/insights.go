package services

import (
	"fmt"
	"sort"
	"strings"

	"amazon-tracker/models"
	"amazon-tracker/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(keyword string, products []*models.Product) *models.InsightReport {
	report := &models.InsightReport{Keyword: keyword}

	if len(products) == 0 {
		return report
	}

	report.TotalProducts = len(products)

	var priced []*models.Product
	var rated []*models.Product

	for _, p := range products {
		if p.Price != nil {
			priced = append(priced, p)
		}
		if p.Rating != nil {
			rated = append(rated, p)
		}
		if p.ReviewCount != nil {
			report.ReviewedCount++
		}
	}
	report.PricedCount = len(priced)
	report.RatedCount = len(rated)

	// Price stats (only products with a parsed price)
	if len(priced) > 0 {
		report.MinPrice = *priced[0].Price
		report.MaxPrice = *priced[0].Price
		report.MostExpensive = priced[0]
		var total float64
		for _, p := range priced {
			total += *p.Price
			if *p.Price < report.MinPrice {
				report.MinPrice = *p.Price
			}
			if *p.Price > report.MaxPrice {
				report.MaxPrice = *p.Price
				report.MostExpensive = p
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	if len(rated) > 0 {
		var total float64
		for _, p := range rated {
			total += *p.Rating
		}
		report.AverageRating = round2(total / float64(len(rated)))
	}

	// Top 5 by rating, review count breaking ties
	sort.Slice(rated, func(i, j int) bool {
		if *rated[i].Rating != *rated[j].Rating {
			return *rated[i].Rating > *rated[j].Rating
		}
		return reviewCountOrZero(rated[i]) > reviewCountOrZero(rated[j])
	})
	if len(rated) > 5 {
		report.TopRated = rated[:5]
	} else {
		report.TopRated = rated
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 AMAZON SCRAPE INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Keyword                : \033[1m%s\033[0m\n", r.Keyword)
	fmt.Printf("  Total products scraped : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Printf("  With price             : \033[1m%d\033[0m\n", r.PricedCount)
	fmt.Printf("  With rating            : \033[1m%d\033[0m\n", r.RatedCount)
	fmt.Printf("  With reviews           : \033[1m%d\033[0m\n", r.ReviewedCount)
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics (USD)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.PricedCount > 0 {
		fmt.Printf("  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	if r.RatedCount > 0 {
		fmt.Printf("  Average rating: \033[1;32m%.2f ★\033[0m\n", r.AverageRating)
	}
	fmt.Println()

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Product\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  Price : \033[1;31m$%.2f\033[0m\n", *r.MostExpensive.Price)
		fmt.Println()
	}

	// Top 5 by rating
	fmt.Printf("\033[1;33m  Top 5 Highest Rated Products\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			title := truncate(p.Title, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.1f ★\033[0m (%d reviews)\n",
				i+1, title, *p.Rating, reviewCountOrZero(p))
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func reviewCountOrZero(p *models.Product) int {
	if p.ReviewCount == nil {
		return 0
	}
	return *p.ReviewCount
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
