package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// duplicate entry
const mysqlErrDup = 1062

// table maps an entity onto its columns. id is excluded from columns.
type table[E any] struct {
	name    string
	columns []string
	id      func(e *E) *int64
	// dest returns scan targets in column order.
	dest func(e *E) []any
	// values returns insert/update arguments in column order.
	values func(e *E) []any
}

type mysqlRepository[E any] struct {
	db *sql.DB
	t  table[E]
}

func newMySQLRepository[E any](db *sql.DB, t table[E]) *mysqlRepository[E] {
	return &mysqlRepository[E]{db: db, t: t}
}

func (r *mysqlRepository[E]) selectQuery() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(r.t.columns, ", "), r.t.name)
}

func (r *mysqlRepository[E]) scan(row interface{ Scan(...any) error }) (E, error) {
	var e E
	dest := append([]any{r.t.id(&e)}, r.t.dest(&e)...)
	err := row.Scan(dest...)
	return e, err
}

func (r *mysqlRepository[E]) List(ctx context.Context) ([]E, error) {
	rows, err := r.db.QueryContext(ctx, r.selectQuery()+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.name, err)
	}
	defer rows.Close()

	out := []E{}
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.name, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *mysqlRepository[E]) Get(ctx context.Context, id int64) (E, error) {
	e, err := r.scan(r.db.QueryRowContext(ctx, r.selectQuery()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("get %s %d: %w", r.t.name, id, err)
	}
	return e, nil
}

func (r *mysqlRepository[E]) Create(ctx context.Context, e *E) error {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(r.t.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.t.name, strings.Join(r.t.columns, ", "), marks)

	res, err := r.db.ExecContext(ctx, query, r.t.values(e)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.t.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.t.name, err)
	}
	*r.t.id(e) = id
	return nil
}

func (r *mysqlRepository[E]) Update(ctx context.Context, e *E) error {
	sets := make([]string, len(r.t.columns))
	for i, col := range r.t.columns {
		sets[i] = col + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.t.name, strings.Join(sets, ", "))

	args := append(r.t.values(e), *r.t.id(e))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s %d: %w", r.t.name, *r.t.id(e), err)
	}
	return nil
}

func (r *mysqlRepository[E]) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.t.name, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mysqlRepository[E]) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", r.t.name)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s %d: %w", r.t.name, id, err)
	}
	return exists, nil
}

var shopTable = table[ShopModel]{
	name:    "shops",
	columns: []string{"name", "address_line", "zipcode", "city", "country", "email"},
	id:      func(s *ShopModel) *int64 { return &s.ID },
	dest: func(s *ShopModel) []any {
		return []any{&s.Name, &s.AddressLine, &s.Zipcode, &s.City, &s.Country, &s.Email}
	},
	values: func(s *ShopModel) []any {
		return []any{s.Name, s.AddressLine, s.Zipcode, s.City, s.Country, s.Email}
	},
}

var categoryTable = table[CategoryModel]{
	name:    "categories",
	columns: []string{"name"},
	id:      func(c *CategoryModel) *int64 { return &c.ID },
	dest:    func(c *CategoryModel) []any { return []any{&c.Name} },
	values:  func(c *CategoryModel) []any { return []any{c.Name} },
}

var productTable = table[ProductModel]{
	name:    "products",
	columns: []string{"name", "description", "category_id"},
	id:      func(p *ProductModel) *int64 { return &p.ID },
	dest:    func(p *ProductModel) []any { return []any{&p.Name, &p.Description, &p.CategoryID} },
	values:  func(p *ProductModel) []any { return []any{p.Name, p.Description, p.CategoryID} },
}

var stockTable = table[StockModel]{
	name:    "stocks",
	columns: []string{"product_id", "shop_id", "price", "stock", "sales"},
	id:      func(s *StockModel) *int64 { return &s.ID },
	dest: func(s *StockModel) []any {
		return []any{&s.ProductID, &s.ShopID, &s.Price, &s.Stock, &s.Sales}
	},
	values: func(s *StockModel) []any {
		return []any{s.ProductID, s.ShopID, s.Price, s.Stock, s.Sales}
	},
}

// =========================
// Users
// =========================

type MySQLUserStore struct {
	DB *sql.DB
}

const userColumns = "id, name, email, password, role, created_at, updated_at"

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MySQLUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, err
}

func (s *MySQLUserStore) FindByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, err
}

func (s *MySQLUserStore) CreateUser(ctx context.Context, u *User) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.Name, u.Email, u.Password, u.Role, now, now)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDup {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return nil
}

func NewMySQLStores(db *sql.DB) *Stores {
	return &Stores{
		Users:      &MySQLUserStore{DB: db},
		Shops:      newMySQLRepository(db, shopTable),
		Categories: newMySQLRepository(db, categoryTable),
		Products:   newMySQLRepository(db, productTable),
		Stocks:     newMySQLRepository(db, stockTable),
	}
}
