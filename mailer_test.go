package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotifier(t *testing.T) {
	assert.IsType(t, LogNotifier{}, NewNotifier(&Config{}))
	assert.IsType(t, &SMTPNotifier{}, NewNotifier(&Config{SMTPHost: "smtp.x.com", SMTPPort: 587}))
}

func TestSMTPNotifierHonoursCancelledContext(t *testing.T) {
	n := NewSMTPNotifier("127.0.0.1", 1, "", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, ShopMail{To: "shop@x.com"}), context.Canceled)
}

func TestShopMailBody(t *testing.T) {
	m := ShopMail{From: "me@x.com", Name: "Me", Message: "Hello"}
	assert.Equal(t, "Message from Me <me@x.com>:\n\nHello\n", m.body())
}
