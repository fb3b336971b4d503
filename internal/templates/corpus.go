package templates

// Corpus returns a fresh copy of the shipped template set. Template order is
// the tie-break order for equal search scores.
func Corpus() []QueryTemplate {
	return []QueryTemplate{
		{
			ID: "total_revenue",
			Patterns: []string{
				"total revenue",
				"what is the total revenue",
				"how much revenue",
				"total sales",
				"revenue amount",
				"money made",
				"earnings",
			},
			Keywords: []string{"revenue", "sales", "total", "earnings", "income"},
			SQL: `
				SELECT SUM(revenue) AS total_revenue,
					COUNT(DISTINCT transaction_id) AS transaction_count,
					AVG(revenue) AS avg_transaction_value
				FROM transactions
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				{{region_filter}}`,
			Parameters: []Param{ParamPeriod, ParamRegionFilter},
			Category:   "revenue",
			Confidence: 0.9,
			Examples: []string{
				"What is the total revenue?",
				"Show me total sales last month",
				"How much money did we make?",
			},
		},
		{
			ID: "revenue_by_region",
			Patterns: []string{
				"revenue by region",
				"sales by location",
				"regional performance",
				"performance by area",
				"location revenue",
			},
			Keywords: []string{"region", "location", "area", "regional", "by", "per"},
			SQL: `
				SELECT region,
					SUM(revenue) AS total_revenue,
					COUNT(DISTINCT transaction_id) AS transactions,
					ROUND(AVG(revenue), 2) AS avg_transaction,
					RANK() OVER (ORDER BY SUM(revenue) DESC) AS rank
				FROM transactions
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				GROUP BY region
				ORDER BY total_revenue DESC
				LIMIT {{limit}}`,
			Parameters: []Param{ParamPeriod, ParamLimit},
			Category:   "regional",
			Confidence: 0.85,
			Examples: []string{
				"Show revenue by region",
				"What are sales in each location?",
				"Regional performance breakdown",
			},
		},
		{
			ID: "top_stores",
			Patterns: []string{
				"top stores",
				"show me top stores",
				"best performing stores",
				"highest revenue stores",
				"top locations",
				"best outlets",
			},
			Keywords: []string{"top", "best", "highest", "stores", "outlets", "performing"},
			SQL: `
				SELECT store_name, store_type, region,
					SUM(revenue) AS total_revenue,
					COUNT(DISTINCT transaction_id) AS transactions,
					ROUND(AVG(customer_satisfaction), 2) AS avg_satisfaction
				FROM transactions t
				JOIN stores s ON t.store_id = s.store_id
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				{{region_filter}}
				GROUP BY store_name, store_type, region
				ORDER BY total_revenue DESC
				LIMIT {{limit}}`,
			Parameters: []Param{ParamPeriod, ParamLimit, ParamRegionFilter},
			Category:   "stores",
			Confidence: 0.88,
			Examples: []string{
				"Show me top 10 stores",
				"Which stores are performing best?",
				"Top revenue generating locations",
			},
		},
		{
			ID: "brand_comparison",
			Patterns: []string{
				"brand performance",
				"compare brands",
				"brand comparison",
				"tbwa vs",
				"brand market share",
			},
			Keywords: []string{"brand", "compare", "vs", "versus", "comparison", "tbwa"},
			SQL: `
				SELECT brand_name,
					SUM(revenue) AS total_revenue,
					COUNT(DISTINCT customer_id) AS unique_customers,
					ROUND(SUM(revenue) * 100.0 / SUM(SUM(revenue)) OVER (), 2) AS market_share_pct,
					AVG(customer_satisfaction) AS avg_satisfaction
				FROM transactions
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				{{region_filter}}
				GROUP BY brand_name
				ORDER BY total_revenue DESC`,
			Parameters: []Param{ParamPeriod, ParamRegionFilter},
			Category:   "brands",
			Confidence: 0.87,
			Examples: []string{
				"Compare brand performance",
				"How is TBWA doing vs competitors?",
				"Show brand market share",
			},
		},
		{
			ID: "monthly_trend",
			Patterns: []string{
				"monthly trend",
				"month over month",
				"monthly revenue",
				"trend analysis",
				"revenue trend",
			},
			Keywords: []string{"monthly", "trend", "month", "over", "time", "growth"},
			SQL: `
				SELECT DATE_TRUNC('month', created_at) AS month,
					SUM(revenue) AS revenue,
					COUNT(DISTINCT transaction_id) AS transactions,
					ROUND(
						(SUM(revenue) - LAG(SUM(revenue)) OVER (ORDER BY DATE_TRUNC('month', created_at)))
						* 100.0 / LAG(SUM(revenue)) OVER (ORDER BY DATE_TRUNC('month', created_at)),
						2
					) AS growth_rate
				FROM transactions
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				GROUP BY DATE_TRUNC('month', created_at)
				ORDER BY month DESC`,
			Parameters: []Param{ParamPeriod},
			Category:   "trends",
			Confidence: 0.85,
			Examples: []string{
				"Show monthly revenue trend",
				"Month over month growth",
				"Revenue trend last 6 months",
			},
		},
		{
			ID: "customer_segments",
			Patterns: []string{
				"customer segments",
				"customer analysis",
				"customer behavior",
				"customer types",
				"segment performance",
			},
			Keywords: []string{"customer", "segment", "behavior", "analysis", "types"},
			SQL: `
				SELECT customer_segment,
					COUNT(DISTINCT customer_id) AS customer_count,
					SUM(revenue) AS total_revenue,
					AVG(revenue) AS avg_order_value,
					AVG(customer_satisfaction) AS avg_satisfaction
				FROM transactions
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				{{region_filter}}
				GROUP BY customer_segment
				ORDER BY total_revenue DESC`,
			Parameters: []Param{ParamPeriod, ParamRegionFilter},
			Category:   "customers",
			Confidence: 0.84,
			Examples: []string{
				"Analyze customer segments",
				"Customer behavior by type",
				"Which customer segment spends most?",
			},
		},
		{
			ID: "campaign_impact",
			Patterns: []string{
				"campaign effectiveness",
				"campaign impact",
				"marketing effectiveness",
				"campaign performance",
				"marketing roi",
			},
			Keywords: []string{"campaign", "marketing", "effectiveness", "impact", "roi"},
			SQL: `
				SELECT campaign_name, campaign_type,
					COUNT(DISTINCT influenced_transactions) AS influenced_sales,
					SUM(influenced_revenue) AS attributed_revenue,
					ROUND(influence_score * 100, 2) AS influence_percentage
				FROM campaign_performance
				WHERE start_date >= CURRENT_DATE - INTERVAL '{{period}}'
				ORDER BY attributed_revenue DESC
				LIMIT {{limit}}`,
			Parameters: []Param{ParamPeriod, ParamLimit},
			Category:   "campaigns",
			Confidence: 0.83,
			Examples: []string{
				"How effective are our campaigns?",
				"Campaign performance analysis",
				"Marketing ROI breakdown",
			},
		},
		{
			ID: "city_performance",
			Patterns: []string{
				"city performance",
				"performance by city",
				"city revenue",
				"urban analysis",
				"city breakdown",
			},
			Keywords: []string{"city", "urban", "cities", "municipal", "metro"},
			SQL: `
				SELECT city_name, province_name, region_name,
					SUM(revenue) AS total_revenue,
					COUNT(DISTINCT store_id) AS store_count,
					COUNT(DISTINCT transaction_id) AS transactions
				FROM transactions t
				JOIN geographic_data g ON t.location_id = g.location_id
				WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				GROUP BY city_name, province_name, region_name
				ORDER BY total_revenue DESC
				LIMIT {{limit}}`,
			Parameters: []Param{ParamPeriod, ParamLimit},
			Category:   "geographic",
			Confidence: 0.86,
			Examples: []string{
				"Show performance by city",
				"Which cities generate most revenue?",
				"City-level breakdown",
			},
		},
		{
			ID: "executive_kpis",
			Patterns: []string{
				"executive summary",
				"kpi summary",
				"key metrics",
				"dashboard kpis",
				"performance summary",
			},
			Keywords: []string{"kpi", "summary", "executive", "metrics", "dashboard"},
			SQL: `
				WITH kpis AS (
					SELECT SUM(revenue) AS total_revenue,
						COUNT(DISTINCT transaction_id) AS total_transactions,
						COUNT(DISTINCT customer_id) AS unique_customers,
						AVG(customer_satisfaction) AS avg_satisfaction,
						COUNT(DISTINCT store_id) AS active_stores,
						COUNT(DISTINCT region) AS regions_covered
					FROM transactions
					WHERE created_at >= CURRENT_DATE - INTERVAL '30 days'
				)
				SELECT ROUND(total_revenue / 1000000, 2) AS revenue_millions,
					total_transactions,
					unique_customers,
					ROUND(avg_satisfaction, 2) AS satisfaction_score,
					active_stores,
					regions_covered
				FROM kpis`,
			Category:   "executive",
			Confidence: 0.9,
			Examples: []string{
				"Show executive dashboard",
				"Key performance indicators",
				"Summary metrics",
			},
		},
		{
			ID: "market_share",
			Patterns: []string{
				"market share",
				"tbwa market share",
				"share of market",
				"market position",
				"competitive share",
			},
			Keywords: []string{"market", "share", "position", "competitive", "tbwa"},
			SQL: `
				WITH market_totals AS (
					SELECT SUM(CASE WHEN brand_category = 'TBWA' THEN revenue ELSE 0 END) AS tbwa_revenue,
						SUM(revenue) AS total_market_revenue
					FROM transactions
					WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				)
				SELECT ROUND(tbwa_revenue / 1000000, 2) AS tbwa_revenue_millions,
					ROUND(total_market_revenue / 1000000, 2) AS market_revenue_millions,
					ROUND(tbwa_revenue * 100.0 / total_market_revenue, 2) AS tbwa_market_share_pct
				FROM market_totals`,
			Parameters: []Param{ParamPeriod},
			Category:   "competitive",
			Confidence: 0.88,
			Examples: []string{
				"What is TBWA market share?",
				"Our market position",
				"TBWA share of market",
			},
		},
		{
			ID: "sari_sari_performance",
			Patterns: []string{
				"sari sari stores",
				"sari sari performance",
				"neighborhood stores",
				"small retailers",
				"tindahan performance",
			},
			Keywords: []string{"sari", "tindahan", "neighborhood", "retailers", "micro"},
			SQL: `
				SELECT store_name, barangay, region,
					SUM(revenue) AS total_revenue,
					COUNT(DISTINCT transaction_id) AS transactions,
					ROUND(AVG(basket_size), 2) AS avg_basket_size
				FROM transactions t
				JOIN stores s ON t.store_id = s.store_id
				WHERE s.store_type = 'sari-sari'
					AND created_at >= CURRENT_DATE - INTERVAL '{{period}}'
				{{region_filter}}
				GROUP BY store_name, barangay, region
				ORDER BY total_revenue DESC
				LIMIT {{limit}}`,
			Parameters: []Param{ParamPeriod, ParamLimit, ParamRegionFilter},
			Category:   "sari-sari",
			Confidence: 0.86,
			Examples: []string{
				"How are sari-sari stores doing?",
				"Top sari-sari stores in Cebu",
				"Neighborhood store performance",
			},
		},
	}
}
