package main

import (
	"context"
	"errors"
)

var ErrEmailTaken = errors.New("email already taken")

// Repository is the row-level persistence contract shared by every resource.
type Repository[E any] interface {
	// List returns every row in insertion order.
	List(ctx context.Context) ([]E, error)
	// Get returns ErrNotFound when no row has that id.
	Get(ctx context.Context, id int64) (E, error)
	// Create persists e and assigns its id.
	Create(ctx context.Context, e *E) error
	Update(ctx context.Context, e *E) error
	// Delete returns ErrNotFound when no row has that id.
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// UserStore persists credentials.
type UserStore interface {
	// FindByEmail returns ErrNotFound if no user has that email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// CreateUser returns ErrEmailTaken on a duplicate email.
	CreateUser(ctx context.Context, u *User) error
}

type Stores struct {
	Users      UserStore
	Shops      Repository[ShopModel]
	Categories Repository[CategoryModel]
	Products   Repository[ProductModel]
	Stocks     Repository[StockModel]
}
