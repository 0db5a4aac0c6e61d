package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const refreshPath = "/auth/refresh"

// =======================
// 🧩 Helper Functions
// =======================

// GetIDParam parses :id. Anything that is not a positive integer cannot name a row.
func GetIDParam(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, notFound(entity))
		return 0, false
	}
	return id, true
}

func bindPatch(c *gin.Context) (Patch, bool) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	p, err := ParsePatch(body)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return p, true
}

// =======================
// Router
// =======================

type RouterDeps struct {
	Auth       *AuthHandler
	Registries *Registries
	Notifier   Notifier
	Policy     Policy
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := AuthMiddleware(d.Auth.Tokens, d.Auth.Users, refreshPath)
	AuthRoutes(r, d.Auth, auth)

	api := r.Group("/", auth)
	ResourceRoutes(api, "shops", d.Registries.Shops, d.Policy, true)
	ResourceRoutes(api, "categories", d.Registries.Categories, d.Policy, true)
	ResourceRoutes(api, "products", d.Registries.Products, d.Policy, true)
	ResourceRoutes(api, "stocks", d.Registries.Stocks, d.Policy, false)
	MailRoutes(api, &MailHandler{Shops: d.Registries.Shops, Notifier: d.Notifier}, d.Policy)

	return r
}

// =========================
// 🗂️ Resource Management
// =========================

// ResourceRoutes mounts CRUD for one registry under /name. Stocks have no list route.
func ResourceRoutes[E any, P any](r gin.IRouter, name string, reg *Registry[E, P], policy Policy, listable bool) {
	api := r.Group("/" + name)
	if listable {
		api.GET("", Authorize(policy, ActionList, name), func(c *gin.Context) {
			rows, err := reg.List(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows)
		})
	}

	api.GET("/:id", Authorize(policy, ActionRead, name), func(c *gin.Context) {
		id, ok := GetIDParam(c, reg.Name)
		if !ok {
			return
		}
		out, err := reg.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	api.POST("", Authorize(policy, ActionCreate, name), func(c *gin.Context) {
		p, ok := bindPatch(c)
		if !ok {
			return
		}
		out, err := reg.Create(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	api.PATCH("/:id", Authorize(policy, ActionUpdate, name), func(c *gin.Context) {
		id, ok := GetIDParam(c, reg.Name)
		if !ok {
			return
		}
		p, ok := bindPatch(c)
		if !ok {
			return
		}
		out, err := reg.Update(c.Request.Context(), id, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	api.DELETE("/:id", Authorize(policy, ActionDelete, name), func(c *gin.Context) {
		id, ok := GetIDParam(c, reg.Name)
		if !ok {
			return
		}
		if err := reg.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": reg.Name + " deleted"})
	})
}

// =========================
// 📧 Shop Mail
// =========================

type MailRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
	Name    string `json:"name"    binding:"required"`
	Mail    string `json:"mail"    binding:"required,email"`
}

type MailHandler struct {
	Shops    *Registry[ShopModel, ShopPatch]
	Notifier Notifier
}

func MailRoutes(r gin.IRouter, h *MailHandler, policy Policy) {
	r.POST("/mail_shop/:id", Authorize(policy, ActionNotify, "shops"), h.MailShop)
}

func (h *MailHandler) MailShop(c *gin.Context) {
	id, ok := GetIDParam(c, h.Shops.Name)
	if !ok {
		return
	}
	var req MailRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	shop, err := h.Shops.load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if shop.Email == "" {
		errs := FieldErrors{}
		errs.Add("email", "The shop has no email address.")
		respondError(c, errs.Err())
		return
	}

	err = h.Notifier.Notify(c.Request.Context(), ShopMail{
		To:      shop.Email,
		From:    req.Mail,
		Name:    req.Name,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": req.Message})
}
