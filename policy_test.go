package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	admin := Identity{UserID: 1, Role: RoleAdmin}
	customer := Identity{UserID: 2, Role: RoleCustomer}

	tests := []struct {
		name     string
		actor    Identity
		action   Action
		resource string
		want     bool
	}{
		{"customer reads products", customer, ActionRead, "products", true},
		{"customer lists categories", customer, ActionList, "categories", true},
		{"customer creates product", customer, ActionCreate, "products", false},
		{"customer deletes category", customer, ActionDelete, "categories", false},
		{"admin updates product", admin, ActionUpdate, "products", true},
		{"customer creates shop", customer, ActionCreate, "shops", true},
		{"customer updates stock", customer, ActionUpdate, "stocks", true},
		{"customer mails shop", customer, ActionNotify, "shops", true},
		{"anonymous reads shops", Identity{}, ActionRead, "shops", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Allows(tt.actor, tt.action, tt.resource))
		})
	}
}
