package catalog

// Category is the product category slug used by the catalog API.
type Category string

const (
	CategoryBestSellers  Category = "best-sellers"
	CategoryWeeklyDeals  Category = "weekly-deals"
	CategoryTesters      Category = "testers"
	CategoryExplorerKits Category = "explorer-kits"
	CategoryMen          Category = "men"
	CategoryWomen        Category = "women"
	CategoryNewArrivals  Category = "new-arrivals"
	CategoryColognes     Category = "colognes"
	CategoryRollOns      Category = "roll-ons"
)

// Product is a read-only snapshot of a catalog product. Prices are whole
// rupees, sizes are bottle volumes in ml.
type Product struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Notes        string   `json:"notes,omitempty"`
	Price        int64    `json:"price"`
	Sizes        []int    `json:"sizes"`
	DefaultSize  int      `json:"defaultSize"`
	Category     Category `json:"category"`
	IsBestSeller bool     `json:"isBestSeller"`
	IsNewArrival bool     `json:"isNewArrival"`
	Image        string   `json:"image"`
	Gallery      []string `json:"gallery,omitempty"`
}

// CategoryEntry is the category resource managed through the admin API.
type CategoryEntry struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}
