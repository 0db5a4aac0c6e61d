package main

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Stores, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLStores(db), mock
}

func TestMySQLRepositoryGet(t *testing.T) {
	stores, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM categories WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Books"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM categories WHERE id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	c, err := stores.Categories.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, CategoryModel{ID: 3, Name: "Books"}, c)

	_, err = stores.Categories.Get(ctx, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepositoryListOrdersByID(t *testing.T) {
	stores, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, product_id, shop_id, price, stock, sales FROM stocks ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "shop_id", "price", "stock", "sales"}).
			AddRow(1, 10, 20, "4.50", 3, nil).
			AddRow(2, 11, 20, "0.00", 0, 15))

	rows, err := stores.Stocks.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, decimal.RequireFromString("4.5").Equal(rows[0].Price))
	assert.Nil(t, rows[0].Sales)
	require.NotNil(t, rows[1].Sales)
	assert.Equal(t, int64(15), *rows[1].Sales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepositoryWrites(t *testing.T) {
	stores, mock := newMock(t)
	ctx := context.Background()
	price := decimal.RequireFromString("12.50")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stocks (product_id, shop_id, price, stock, sales) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(int64(1), int64(2), price, int64(5), nil).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stocks SET product_id = ?, shop_id = ?, price = ?, stock = ?, sales = ? WHERE id = ?")).
		WithArgs(int64(1), int64(2), price, int64(4), nil, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stocks WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stocks WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := StockModel{ProductID: 1, ShopID: 2, Price: price, Stock: 5}
	require.NoError(t, stores.Stocks.Create(ctx, &s))
	assert.Equal(t, int64(9), s.ID)

	s.Stock = 4
	require.NoError(t, stores.Stocks.Update(ctx, &s))
	require.NoError(t, stores.Stocks.Delete(ctx, 9))
	assert.ErrorIs(t, stores.Stocks.Delete(ctx, 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepositoryExists(t *testing.T) {
	stores, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := stores.Products.Exists(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserStore(t *testing.T) {
	stores, mock := newMock(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE email = ?")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at", "updated_at"}).
			AddRow(1, "A", "a@x.com", "hash", "admin", created, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at", "updated_at"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("B", "a@x.com", "hash", "customer", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com'"})
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("C", "c@x.com", "hash", "customer", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))

	u, err := stores.Users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.Equal(t, created, u.CreatedAt)

	_, err = stores.Users.FindByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	err = stores.Users.CreateUser(ctx, &User{Name: "B", Email: "a@x.com", Password: "hash", Role: RoleCustomer})
	assert.ErrorIs(t, err, ErrEmailTaken)

	c := &User{Name: "C", Email: "c@x.com", Password: "hash", Role: RoleCustomer}
	require.NoError(t, stores.Users.CreateUser(ctx, c))
	assert.Equal(t, int64(3), c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
