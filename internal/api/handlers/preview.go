package handlers

import "strings"

// Row is one preview record in a query response.
type Row map[string]interface{}

type previewShape struct {
	marker string
	rows   func() []Row
}

// Shapes are checked in order against the lowercased SQL; the first marker
// found picks the rows. The rows are fixed samples, nothing is executed.
var previewShapes = []previewShape{
	// market share columns also end in revenue_millions
	{"tbwa_market_share", func() []Row {
		return []Row{{"tbwa_revenue_millions": 4.2, "market_revenue_millions": 14.8, "tbwa_market_share_pct": 28.4}}
	}},
	{"revenue_millions", executiveRows},
	{"kpi", executiveRows},
	{"group by region", func() []Row {
		return []Row{
			{"region": "Metro Manila", "revenue": 1234567, "transactions": 45678, "market_share": 32.1},
			{"region": "Cebu", "revenue": 987654, "transactions": 34567, "market_share": 28.5},
			{"region": "Davao", "revenue": 765432, "transactions": 23456, "market_share": 25.8},
			{"region": "Iloilo", "revenue": 543210, "transactions": 15678, "market_share": 22.3},
			{"region": "Baguio", "revenue": 432109, "transactions": 12345, "market_share": 19.7},
		}
	}},
	{"brand_name", func() []Row {
		return []Row{
			{"brand_name": "TBWA Client A", "revenue": 2345678, "customers": 12345, "satisfaction": 0.89},
			{"brand_name": "TBWA Client B", "revenue": 1876543, "customers": 9876, "satisfaction": 0.85},
			{"brand_name": "Competitor X", "revenue": 1654321, "customers": 8765, "satisfaction": 0.78},
			{"brand_name": "Competitor Y", "revenue": 1234567, "customers": 6543, "satisfaction": 0.72},
		}
	}},
	{"store_name", func() []Row {
		return []Row{
			{"store_name": "Makati Premium", "store_type": "Premium", "region": "NCR", "total_revenue": 567890, "transactions": 2345, "avg_satisfaction": 0.91},
			{"store_name": "BGC Central", "store_type": "Premium", "region": "NCR", "total_revenue": 456789, "transactions": 1987, "avg_satisfaction": 0.88},
			{"store_name": "Cebu Ayala", "store_type": "Premium", "region": "Cebu", "total_revenue": 345678, "transactions": 1654, "avg_satisfaction": 0.86},
			{"store_name": "Davao SM", "store_type": "Mass Market", "region": "Davao", "total_revenue": 234567, "transactions": 1432, "avg_satisfaction": 0.83},
		}
	}},
	{"date_trunc('month'", monthlyRows},
	{"customer_segment", func() []Row {
		return []Row{
			{"customer_segment": "Premium", "customer_count": 5678, "total_revenue": 2345678, "avg_order_value": 413, "avg_satisfaction": 0.92},
			{"customer_segment": "Regular", "customer_count": 23456, "total_revenue": 3456789, "avg_order_value": 147, "avg_satisfaction": 0.84},
			{"customer_segment": "Budget", "customer_count": 45678, "total_revenue": 2345678, "avg_order_value": 51, "avg_satisfaction": 0.78},
		}
	}},
	{"city_name", func() []Row {
		return []Row{
			{"city_name": "Makati", "province_name": "Metro Manila", "region_name": "NCR", "total_revenue": 1234567, "store_count": 23, "transactions": 8765},
			{"city_name": "Quezon City", "province_name": "Metro Manila", "region_name": "NCR", "total_revenue": 987654, "store_count": 19, "transactions": 6543},
			{"city_name": "Cebu City", "province_name": "Cebu", "region_name": "Central Visayas", "total_revenue": 765432, "store_count": 15, "transactions": 5432},
			{"city_name": "Davao City", "province_name": "Davao del Sur", "region_name": "Davao Region", "total_revenue": 654321, "store_count": 12, "transactions": 4321},
		}
	}},
}

func executiveRows() []Row {
	return []Row{{
		"revenue_millions":   4.7,
		"total_transactions": 128453,
		"unique_customers":   45678,
		"satisfaction_score": 0.82,
		"active_stores":      187,
		"regions_covered":    15,
	}}
}

func monthlyRows() []Row {
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}
	rows := make([]Row, 0, len(months))
	for i, month := range months {
		var growth interface{}
		if i > 0 {
			growth = 5 + float64(i)*0.5
		}
		rows = append(rows, Row{
			"month":        month,
			"revenue":      3500000 + i*200000,
			"transactions": 25000 + i*2000,
			"growth_rate":  growth,
		})
	}
	return rows
}

// PreviewRows returns sample rows shaped like the result of sql.
func PreviewRows(sql string) []Row {
	lower := strings.ToLower(sql)
	for _, shape := range previewShapes {
		if strings.Contains(lower, shape.marker) {
			return shape.rows()
		}
	}
	return []Row{{
		"metric":           "Total Revenue",
		"transactions":     128453,
		"total_revenue":    4700000,
		"avg_transaction":  36.59,
		"unique_customers": 45678,
	}}
}
