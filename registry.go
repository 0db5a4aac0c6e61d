package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Manager is the per-entity capability set used by Registry.
type Manager[E any, P any] interface {
	// Decode type-checks the body; create also enforces required fields.
	Decode(p Patch, create bool) (P, FieldErrors)
	// References checks foreign keys set in the patch.
	References(ctx context.Context, in P) ([]*ValidationError, error)
	CreateFrom(in P) E
	Merge(e *E, in P)
	Project(e E) any
}

// Registry implements list/get/create/update/delete for one entity type.
type Registry[E any, P any] struct {
	Name    string
	Store   Repository[E]
	Manager Manager[E, P]
}

func NewRegistry[E any, P any](name string, store Repository[E], m Manager[E, P]) *Registry[E, P] {
	return &Registry[E, P]{Name: name, Store: store, Manager: m}
}

func (r *Registry[E, P]) List(ctx context.Context) ([]any, error) {
	rows, err := r.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, e := range rows {
		out[i] = r.Manager.Project(e)
	}
	return out, nil
}

func (r *Registry[E, P]) load(ctx context.Context, id int64) (E, error) {
	e, err := r.Store.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return e, notFound(r.Name)
		}
		return e, err
	}
	return e, nil
}

func (r *Registry[E, P]) Get(ctx context.Context, id int64) (any, error) {
	e, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Manager.Project(e), nil
}

func (r *Registry[E, P]) validate(ctx context.Context, p Patch, create bool) (P, error) {
	in, errs := r.Manager.Decode(p, create)
	refs, err := r.Manager.References(ctx, in)
	if err != nil {
		return in, err
	}
	return in, joinValidation(errs, refs)
}

func (r *Registry[E, P]) Create(ctx context.Context, p Patch) (any, error) {
	in, err := r.validate(ctx, p, true)
	if err != nil {
		return nil, err
	}
	e := r.Manager.CreateFrom(in)
	if err := r.Store.Create(ctx, &e); err != nil {
		return nil, err
	}
	return r.Manager.Project(e), nil
}

// Update overwrites only the fields present in p. Nothing is written when
// validation fails or p is empty.
func (r *Registry[E, P]) Update(ctx context.Context, id int64, p Patch) (any, error) {
	e, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := r.validate(ctx, p, false)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return r.Manager.Project(e), nil
	}
	r.Manager.Merge(&e, in)
	if err := r.Store.Update(ctx, &e); err != nil {
		return nil, err
	}
	return r.Manager.Project(e), nil
}

func (r *Registry[E, P]) Delete(ctx context.Context, id int64) error {
	if _, err := r.load(ctx, id); err != nil {
		return err
	}
	if err := r.Store.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound(r.Name)
		}
		return err
	}
	return nil
}

// checkRef records a reference error for field when id is set but missing from store.
func checkRef[E any](ctx context.Context, store Repository[E], field string, id Optional[int64], refs *[]*ValidationError) error {
	if !id.Set {
		return nil
	}
	ok, err := store.Exists(ctx, id.Value)
	if err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}
	if !ok {
		*refs = append(*refs, referenceError(field))
	}
	return nil
}

// =========================
// Shop
// =========================

type shopManager struct{}

func (shopManager) Decode(p Patch, create bool) (ShopPatch, FieldErrors) {
	errs := FieldErrors{}
	if create {
		requireFields(errs, p, "name", "address_line", "zipcode", "city", "country")
	}
	in := ShopPatch{
		Name:        StringField(p, "name", errs),
		AddressLine: StringField(p, "address_line", errs),
		Zipcode:     StringField(p, "zipcode", errs),
		City:        StringField(p, "city", errs),
		Country:     StringField(p, "country", errs),
		Email:       shopEmail(p, errs),
	}
	return in, errs
}

// shopEmail decodes the optional email; null or "" clears it.
func shopEmail(p Patch, errs FieldErrors) Optional[string] {
	o := NullableField[string](p, "email", "a string", errs)
	if !o.Set {
		return Optional[string]{}
	}
	if o.Value == nil {
		return Some("")
	}
	email := strings.TrimSpace(*o.Value)
	if email != "" && !isEmail(email) {
		errs.Add("email", "The email must be a valid email address.")
		return Optional[string]{}
	}
	return Some(email)
}

func (shopManager) References(context.Context, ShopPatch) ([]*ValidationError, error) {
	return nil, nil
}

func (m shopManager) CreateFrom(in ShopPatch) ShopModel {
	var s ShopModel
	m.Merge(&s, in)
	return s
}

func (shopManager) Merge(s *ShopModel, in ShopPatch) {
	in.Name.Apply(&s.Name)
	in.AddressLine.Apply(&s.AddressLine)
	in.Zipcode.Apply(&s.Zipcode)
	in.City.Apply(&s.City)
	in.Country.Apply(&s.Country)
	in.Email.Apply(&s.Email)
}

func (shopManager) Project(s ShopModel) any {
	return ShopResource{
		ID:          s.ID,
		Name:        s.Name,
		AddressLine: s.AddressLine,
		Zipcode:     s.Zipcode,
		City:        s.City,
		Country:     s.Country,
		Email:       s.Email,
	}
}

// =========================
// Category
// =========================

type categoryManager struct{}

func (categoryManager) Decode(p Patch, create bool) (CategoryPatch, FieldErrors) {
	errs := FieldErrors{}
	if create {
		requireFields(errs, p, "name")
	}
	return CategoryPatch{Name: StringField(p, "name", errs)}, errs
}

func (categoryManager) References(context.Context, CategoryPatch) ([]*ValidationError, error) {
	return nil, nil
}

func (categoryManager) CreateFrom(in CategoryPatch) CategoryModel {
	return CategoryModel{Name: in.Name.Value}
}

func (categoryManager) Merge(c *CategoryModel, in CategoryPatch) {
	in.Name.Apply(&c.Name)
}

func (categoryManager) Project(c CategoryModel) any {
	return CategoryResource{ID: c.ID, Name: c.Name}
}

// =========================
// Product
// =========================

type productManager struct {
	categories Repository[CategoryModel]
}

func (productManager) Decode(p Patch, create bool) (ProductPatch, FieldErrors) {
	errs := FieldErrors{}
	if create {
		requireFields(errs, p, "name", "description", "category_id")
	}
	return ProductPatch{
		Name:        StringField(p, "name", errs),
		Description: StringField(p, "description", errs),
		CategoryID:  Field[int64](p, "category_id", "an integer", errs),
	}, errs
}

func (m productManager) References(ctx context.Context, in ProductPatch) ([]*ValidationError, error) {
	var refs []*ValidationError
	err := checkRef(ctx, m.categories, "category_id", in.CategoryID, &refs)
	return refs, err
}

func (m productManager) CreateFrom(in ProductPatch) ProductModel {
	var p ProductModel
	m.Merge(&p, in)
	return p
}

func (productManager) Merge(p *ProductModel, in ProductPatch) {
	in.Name.Apply(&p.Name)
	in.Description.Apply(&p.Description)
	in.CategoryID.Apply(&p.CategoryID)
}

func (productManager) Project(p ProductModel) any {
	return ProductResource{ID: p.ID, Name: p.Name, Description: p.Description, CategoryID: p.CategoryID}
}

// =========================
// Stock
// =========================

// Column limits of stocks.price DECIMAL(10,2) and stocks.stock INT UNSIGNED.
const (
	maxStock    int64 = 4294967295
	priceDigits       = 2
)

var maxPrice = decimal.RequireFromString("99999999.99")

func priceError(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "The price must be at least 0."
	case p.GreaterThan(maxPrice):
		return fmt.Sprintf("The price may not be greater than %s.", maxPrice.StringFixed(priceDigits))
	case !p.Equal(p.Round(priceDigits)):
		return fmt.Sprintf("The price must have at most %d decimal places.", priceDigits)
	}
	return ""
}

type stockManager struct {
	products Repository[ProductModel]
	shops    Repository[ShopModel]
}

func (stockManager) Decode(p Patch, create bool) (StockPatch, FieldErrors) {
	errs := FieldErrors{}
	if create {
		requireFields(errs, p, "product_id", "shop_id", "price", "stock")
	}
	in := StockPatch{
		ProductID: Field[int64](p, "product_id", "an integer", errs),
		ShopID:    Field[int64](p, "shop_id", "an integer", errs),
		Price:     Field[decimal.Decimal](p, "price", "a number", errs),
		Stock:     Field[int64](p, "stock", "an integer", errs),
		Sales:     NullableField[int64](p, "sales", "an integer", errs),
	}
	if in.Price.Set {
		if msg := priceError(in.Price.Value); msg != "" {
			errs.Add("price", msg)
			in.Price = Optional[decimal.Decimal]{}
		}
	}
	if in.Stock.Set && (in.Stock.Value < 0 || in.Stock.Value > maxStock) {
		errs.Add("stock", fmt.Sprintf("The stock must be between 0 and %d.", maxStock))
		in.Stock = Optional[int64]{}
	}
	if in.Sales.Set && in.Sales.Value != nil && (*in.Sales.Value < 0 || *in.Sales.Value > 100) {
		errs.Add("sales", "The sales must be between 0 and 100.")
		in.Sales = Optional[*int64]{}
	}
	return in, errs
}

func (m stockManager) References(ctx context.Context, in StockPatch) ([]*ValidationError, error) {
	var refs []*ValidationError
	if err := checkRef(ctx, m.products, "product_id", in.ProductID, &refs); err != nil {
		return nil, err
	}
	if err := checkRef(ctx, m.shops, "shop_id", in.ShopID, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (m stockManager) CreateFrom(in StockPatch) StockModel {
	var s StockModel
	m.Merge(&s, in)
	return s
}

func (stockManager) Merge(s *StockModel, in StockPatch) {
	in.ProductID.Apply(&s.ProductID)
	in.ShopID.Apply(&s.ShopID)
	in.Price.Apply(&s.Price)
	in.Stock.Apply(&s.Stock)
	in.Sales.Apply(&s.Sales)
}

func (stockManager) Project(s StockModel) any {
	return StockResource{
		ID:        s.ID,
		ProductID: s.ProductID,
		ShopID:    s.ShopID,
		Price:     s.Price,
		Stock:     s.Stock,
		Sales:     s.Sales,
	}
}

// Registries bundles the four resource registries.
type Registries struct {
	Shops      *Registry[ShopModel, ShopPatch]
	Categories *Registry[CategoryModel, CategoryPatch]
	Products   *Registry[ProductModel, ProductPatch]
	Stocks     *Registry[StockModel, StockPatch]
}

func NewRegistries(s *Stores) *Registries {
	return &Registries{
		Shops:      NewRegistry[ShopModel, ShopPatch]("Shop", s.Shops, shopManager{}),
		Categories: NewRegistry[CategoryModel, CategoryPatch]("Category", s.Categories, categoryManager{}),
		Products:   NewRegistry[ProductModel, ProductPatch]("Product", s.Products, productManager{categories: s.Categories}),
		Stocks:     NewRegistry[StockModel, StockPatch]("Stock", s.Stocks, stockManager{products: s.Products, shops: s.Shops}),
	}
}
