package watchlist

import "StockScope/internal/model"

func seed(symbol, company, sector, bucket string) model.WatchlistItem {
	return model.WatchlistItem{Symbol: symbol, CompanyName: company, Sector: sector, MarketCap: bucket, IsActive: true}
}

// Defaults is the watchlist installed on first start.
var Defaults = []model.WatchlistItem{
	seed("AAPL", "Apple Inc.", "Technology", "Large Cap"),
	seed("GOOGL", "Alphabet Inc.", "Technology", "Large Cap"),
	seed("MSFT", "Microsoft Corporation", "Technology", "Large Cap"),
	seed("TSLA", "Tesla Inc.", "Automotive", "Large Cap"),
	seed("AMZN", "Amazon.com Inc.", "Consumer Discretionary", "Large Cap"),
	seed("META", "Meta Platforms Inc.", "Technology", "Large Cap"),
	seed("NVDA", "NVIDIA Corporation", "Technology", "Large Cap"),
	seed("NFLX", "Netflix Inc.", "Communication Services", "Large Cap"),
	seed("UBER", "Uber Technologies Inc.", "Technology", "Large Cap"),
	seed("SNAP", "Snap Inc.", "Communication Services", "Mid Cap"),
	seed("ZOOM", "Zoom Video Communications", "Technology", "Mid Cap"),
	seed("PLTR", "Palantir Technologies Inc.", "Technology", "Mid Cap"),
	seed("COIN", "Coinbase Global Inc.", "Financial Services", "Mid Cap"),
	seed("RBLX", "Roblox Corporation", "Communication Services", "Mid Cap"),
	seed("SHOP", "Shopify Inc.", "Technology", "Large Cap"),
	seed("SQ", "Block Inc.", "Technology", "Mid Cap"),
	seed("PYPL", "PayPal Holdings Inc.", "Financial Services", "Large Cap"),
	seed("ADBE", "Adobe Inc.", "Technology", "Large Cap"),
	seed("CRM", "Salesforce Inc.", "Technology", "Large Cap"),
	seed("SPOT", "Spotify Technology SA", "Communication Services", "Mid Cap"),
}
