package main

import "github.com/shopspring/decimal"

type ShopModel struct {
	ID          int64
	Name        string
	AddressLine string
	Zipcode     string
	City        string
	Country     string
	Email       string // notification target, may be empty
}

type CategoryModel struct {
	ID   int64
	Name string
}

type ProductModel struct {
	ID          int64
	Name        string
	Description string
	CategoryID  int64
}

// StockModel is the shop/product pivot carrying price and quantity.
type StockModel struct {
	ID        int64
	ProductID int64
	ShopID    int64
	Price     decimal.Decimal
	Stock     int64
	Sales     *int64 // NULLable, percent 0-100
}

// =========================
// Patches
// =========================

type ShopPatch struct {
	Name        Optional[string]
	AddressLine Optional[string]
	Zipcode     Optional[string]
	City        Optional[string]
	Country     Optional[string]
	Email       Optional[string]
}

type CategoryPatch struct {
	Name Optional[string]
}

type ProductPatch struct {
	Name        Optional[string]
	Description Optional[string]
	CategoryID  Optional[int64]
}

type StockPatch struct {
	ProductID Optional[int64]
	ShopID    Optional[int64]
	Price     Optional[decimal.Decimal]
	Stock     Optional[int64]
	Sales     Optional[*int64]
}

// =========================
// Projections
// =========================

type ShopResource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AddressLine string `json:"address_line"`
	Zipcode     string `json:"zipcode"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Email       string `json:"email"`
}

type CategoryResource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductResource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
}

type StockResource struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	ShopID    int64           `json:"shop_id"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	Sales     *int64          `json:"sales"`
}
