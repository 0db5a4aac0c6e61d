package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps the password hash primitive.
type PasswordHasher interface {
	Hash(password []byte) ([]byte, error)
	Compare(hash, password []byte) error
}

type BcryptHasher struct{}

func (BcryptHasher) Hash(pw []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
}

func (BcryptHasher) Compare(hash, pw []byte) error {
	return bcrypt.CompareHashAndPassword(hash, pw)
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	Users  UserStore
	Tokens *TokenService
	Hasher PasswordHasher
}

func NewAuthHandler(users UserStore, tokens *TokenService, hasher PasswordHasher) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Hasher: hasher}
}

// Route setup
func AuthRoutes(r gin.IRouter, h *AuthHandler, auth gin.HandlerFunc) {
	api := r.Group("/auth")
	api.POST("/login", h.Login)
	api.POST("/register", h.Register)

	api.Use(auth)
	{
		api.POST("/logout", h.Logout)
		api.POST("/refresh", h.Refresh)
		api.GET("/user-profile", h.UserProfile)
	}
}

// =================== LOGIN ===================

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.attempt(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithToken(c, user)
}

// attempt resolves credentials to a user or ErrUnauthorized.
func (h *AuthHandler) attempt(ctx context.Context, email, password string) (*User, error) {
	user, err := h.Users.FindByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := h.Hasher.Compare([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// =================== REGISTER ===================

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.register(c.Request.Context(), req.Name, req.Email, req.Password, RoleCustomer)
	if err != nil {
		respondError(c, err)
		return
	}

	// registration implies login
	user, err = h.attempt(c.Request.Context(), user.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *AuthHandler) register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	hashed, err := h.Hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(email),
		Password: string(hashed),
		Role:     role,
	}
	if err := h.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			errs := FieldErrors{}
			errs.Add("email", "The email has already been taken.")
			return nil, errs.Err()
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (h *AuthHandler) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := h.Users.FindByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := h.register(ctx, name, email, password, RoleAdmin); err != nil {
		return err
	}
	log.Printf("✅ Admin account %s created", email)
	return nil
}

// =================== SESSION ===================

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Tokens.Revoke(c.GetString(ctxToken))
	c.JSON(http.StatusOK, gin.H{"message": "User successfully signed out"})
}

// Refresh accepts a valid token or, on this route only, an expired one.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, claims, err := h.Tokens.Refresh(c.GetString(ctxToken))
	if errors.Is(err, ErrRefreshExpired) {
		abortUnauthorized(c, "Token can no longer be refreshed")
		return
	}
	if err != nil {
		abortUnauthorized(c, "Token is Invalid")
		return
	}

	id, _ := claims.UserID()
	user, err := h.Users.FindByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		abortUnauthorized(c, "User not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if c.GetBool(ctxTokenExpired) {
		log.Printf("🔄 Expired token of user %d rotated", user.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.Tokens.TTL().Seconds()),
		"user":         user,
	})
}

func (h *AuthHandler) UserProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, user)
}

// =================== UTILITY ===================

func (h *AuthHandler) respondWithToken(c *gin.Context, user *User) {
	token, err := h.Tokens.Issue(*user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  projectUser(*user),
	})
}
