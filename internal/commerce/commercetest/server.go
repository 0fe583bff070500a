// Package commercetest provides an in-process fake of the commerce store
// API for tests.
package commercetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// Route keys accepted by Calls and FailNext.
const (
	ListRegions       = "GET /store/regions"
	ListProducts      = "GET /store/products"
	GetProduct        = "GET /store/products/{id}"
	CreateCart        = "POST /store/carts"
	GetCart           = "GET /store/carts/{id}"
	AddLineItem       = "POST /store/carts/{id}/line-items"
	UpdateLineItem    = "POST /store/carts/{id}/line-items/{line_id}"
	DeleteLineItem    = "DELETE /store/carts/{id}/line-items/{line_id}"
	AddPromotions     = "POST /store/carts/{id}/promotions"
	RemovePromotions  = "DELETE /store/carts/{id}/promotions"
	CompleteCart      = "POST /store/carts/{id}/complete"
	PaymentProviders  = "GET /store/payment-providers"
	PaymentCollection = "POST /store/payment-collections"
	PaymentSession    = "POST /store/payment-collections/{id}/payment-sessions"
)

// Server is a fake commerce backend. PublishableKey, when set, must be set
// before the first request; other state changes go through the setters.
type Server struct {
	*httptest.Server

	PublishableKey string

	mu              sync.Mutex
	regions         []domain.Region
	products        []domain.Product
	providers       []domain.PaymentProvider
	carts           map[string]*domain.Cart
	calls           map[string]int
	failures        map[string]int
	emptyMutations  bool
	hideProduct     bool
	delay           time.Duration
	lastQuery       map[string]string
	lastBody        map[string]map[string]any
	nextID          int
	paymentSessions map[string]string
}

// New starts a fake backend serving the given catalog.
func New(regions []domain.Region, products []domain.Product) *Server {
	s := &Server{
		regions:         regions,
		products:        products,
		providers:       []domain.PaymentProvider{{ID: "pp_system_default", IsEnabled: true}},
		carts:           make(map[string]*domain.Cart),
		calls:           make(map[string]int),
		failures:        make(map[string]int),
		lastQuery:       make(map[string]string),
		lastBody:        make(map[string]map[string]any),
		paymentSessions: make(map[string]string),
	}
	r := chi.NewRouter()
	s.route(r, ListRegions, s.listRegions)
	s.route(r, ListProducts, s.listProducts)
	s.route(r, GetProduct, s.getProduct)
	s.route(r, CreateCart, s.createCart)
	s.route(r, GetCart, s.getCart)
	s.route(r, AddLineItem, s.addLineItem)
	s.route(r, UpdateLineItem, s.updateLineItem)
	s.route(r, DeleteLineItem, s.deleteLineItem)
	s.route(r, AddPromotions, s.addPromotions)
	s.route(r, RemovePromotions, s.removePromotions)
	s.route(r, CompleteCart, s.completeCart)
	s.route(r, PaymentProviders, s.paymentProviders)
	s.route(r, PaymentCollection, s.paymentCollection)
	s.route(r, PaymentSession, s.paymentSession)
	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) route(r chi.Router, key string, h http.HandlerFunc) {
	method, pattern, _ := strings.Cut(key, " ")
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.calls[key]++
		s.lastQuery[key] = req.URL.RawQuery
		status, fail := s.failures[key]
		delete(s.failures, key)
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if s.PublishableKey != "" && req.Header.Get("x-publishable-api-key") != s.PublishableKey {
			writeError(w, http.StatusBadRequest, "invalid publishable key")
			return
		}
		if fail {
			writeError(w, status, "injected failure")
			return
		}
		if req.Body != nil && req.ContentLength != 0 {
			var body map[string]any
			if json.NewDecoder(req.Body).Decode(&body) == nil {
				s.mu.Lock()
				s.lastBody[key] = body
				s.mu.Unlock()
				req = req.WithContext(withBody(req.Context(), body))
			}
		}
		h(w, req)
	}))
}

// Calls returns how many requests hit route key.
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// TotalCalls returns the number of requests across all routes.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// LastQuery returns the raw query string of the latest request to key.
func (s *Server) LastQuery(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[key]
}

// LastBody returns the decoded JSON body of the latest request to key.
func (s *Server) LastBody(key string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[key]
}

// FailNext makes the next request to key fail with status.
func (s *Server) FailNext(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = status
}

// SetDelay delays every response by d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetRegions replaces the region list.
func (s *Server) SetRegions(regions []domain.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = regions
}

// SetProducts replaces the catalog.
func (s *Server) SetProducts(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// SetEmptyMutations makes add and update line-item responses carry a cart
// without items while still applying the change server-side.
func (s *Server) SetEmptyMutations(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyMutations = v
}

// SetHideProduct makes product detail lookups answer with a null product.
func (s *Server) SetHideProduct(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideProduct = v
}

// Cart returns a copy of the server-side cart.
func (s *Server) Cart(id string) (domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return domain.Cart{}, false
	}
	return copyCart(c), true
}

// PutCart installs a server-side cart.
func (s *Server) PutCart(c domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := copyCart(&c)
	s.carts[c.ID] = &cc
}

func (s *Server) listRegions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"regions": nonNil(s.regions)})
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"products": nonNil(s.products)})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hideProduct {
		writeJSON(w, http.StatusOK, map[string]any{"product": nil})
		return
	}
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"product": p})
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Server) createCart(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	regionID, _ := body["region_id"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	var region *domain.Region
	for i := range s.regions {
		if s.regions[i].ID == regionID {
			region = &s.regions[i]
		}
	}
	if region == nil {
		writeError(w, http.StatusBadRequest, "unknown region")
		return
	}
	c := &domain.Cart{ID: s.newID("cart"), RegionID: region.ID, CurrencyCode: region.CurrencyCode, Items: []domain.LineItem{}}
	s.carts[c.ID] = c
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (s *Server) addLineItem(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	variantID, _ := body["variant_id"].(string)
	quantity := intFrom(body["quantity"])
	metadata, _ := body["metadata"].(map[string]any)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	if quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	p, v, found := s.findVariant(variantID)
	if !found {
		writeError(w, http.StatusNotFound, "variant not found")
		return
	}
	merged := false
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity += quantity
			merged = true
		}
	}
	if !merged {
		li := domain.LineItem{
			ID:           s.newID("li"),
			VariantID:    v.ID,
			ProductID:    p.ID,
			Title:        p.Title,
			ProductTitle: p.Title,
			VariantTitle: v.Title,
			Thumbnail:    p.Thumbnail,
			Quantity:     quantity,
			Metadata:     metadata,
		}
		if v.CalculatedPrice != nil {
			li.UnitPrice = v.CalculatedPrice.CalculatedAmount
		}
		c.Items = append(c.Items, li)
	}
	recompute(c)
	s.writeMutation(w, c)
}

func (s *Server) updateLineItem(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	quantity := intFrom(body["quantity"])
	lineID := chi.URLParam(r, "line_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	if quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			c.Items[i].Quantity = quantity
			if md, ok := body["metadata"].(map[string]any); ok {
				c.Items[i].Metadata = md
			}
			recompute(c)
			s.writeMutation(w, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "line item not found")
}

func (s *Server) deleteLineItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "line_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			recompute(c)
			writeJSON(w, http.StatusOK, map[string]any{
				"id":      lineID,
				"object":  "line-item",
				"deleted": true,
				"parent":  c,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "line item not found")
}

func (s *Server) addPromotions(w http.ResponseWriter, r *http.Request) {
	codes := stringsFrom(bodyFrom(r.Context())["promo_codes"])
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	for _, code := range codes {
		if code == "INVALID" {
			writeError(w, http.StatusBadRequest, "promotion code INVALID is not valid")
			return
		}
		if !hasCode(c, code) {
			c.Promotions = append(c.Promotions, domain.Promotion{ID: s.newID("promo"), Code: code})
		}
	}
	recompute(c)
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (s *Server) removePromotions(w http.ResponseWriter, r *http.Request) {
	codes := stringsFrom(bodyFrom(r.Context())["promo_codes"])
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	kept := c.Promotions[:0]
	for _, p := range c.Promotions {
		drop := false
		for _, code := range codes {
			if p.Code == code {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	c.Promotions = kept
	recompute(c)
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (s *Server) completeCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.openCart(w, r)
	if !ok {
		return
	}
	if len(c.Items) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"type":  "cart",
			"cart":  c,
			"error": map[string]any{"message": "cart has no items"},
		})
		return
	}
	now := time.Now().UTC()
	c.CompletedAt = &now
	order := domain.Order{
		ID:           s.newID("order"),
		DisplayID:    s.nextID,
		Email:        c.Email,
		CurrencyCode: c.CurrencyCode,
		Items:        c.Items,
		Total:        c.Total,
		CreatedAt:    now,
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": "order", "order": order})
}

func (s *Server) paymentProviders(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"payment_providers": s.providers})
}

func (s *Server) paymentCollection(w http.ResponseWriter, r *http.Request) {
	cartID, _ := bodyFrom(r.Context())["cart_id"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[cartID]; !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_collection": map[string]any{"id": s.newID("pay_col")},
	})
}

func (s *Server) paymentSession(w http.ResponseWriter, r *http.Request) {
	providerID, _ := bodyFrom(r.Context())["provider_id"].(string)
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentSessions[id] = providerID
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_collection": map[string]any{"id": id},
	})
}

// PaymentSession returns the provider a collection was initialized with.
func (s *Server) PaymentSession(collectionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentSessions[collectionID]
}

// openCart resolves the {id} route param; s.mu must be held.
func (s *Server) openCart(w http.ResponseWriter, r *http.Request) (*domain.Cart, bool) {
	c, ok := s.carts[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return nil, false
	}
	if c.CompletedAt != nil {
		writeError(w, http.StatusBadRequest, "cart is already completed")
		return nil, false
	}
	return c, true
}

func (s *Server) writeMutation(w http.ResponseWriter, c *domain.Cart) {
	if s.emptyMutations {
		empty := copyCart(c)
		empty.Items = []domain.LineItem{}
		writeJSON(w, http.StatusOK, map[string]any{"cart": empty})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (s *Server) findVariant(id string) (domain.Product, domain.Variant, bool) {
	for _, p := range s.products {
		if v, ok := p.VariantByID(id); ok {
			return p, v, true
		}
	}
	return domain.Product{}, domain.Variant{}, false
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s_%d", prefix, s.nextID)
}

func recompute(c *domain.Cart) {
	sub := decimal.Zero
	for _, li := range c.Items {
		sub = sub.Add(li.Subtotal())
	}
	discount := decimal.Zero
	if len(c.Promotions) > 0 {
		discount = sub.Mul(decimal.NewFromFloat(0.1)).Round(2)
	}
	c.Subtotal = sub
	c.DiscountTotal = discount
	c.Total = sub.Sub(discount)
}

func hasCode(c *domain.Cart, code string) bool {
	for _, p := range c.Promotions {
		if p.Code == code {
			return true
		}
	}
	return false
}

func copyCart(c *domain.Cart) domain.Cart {
	cc := *c
	cc.Items = append([]domain.LineItem{}, c.Items...)
	cc.Promotions = append([]domain.Promotion(nil), c.Promotions...)
	return cc
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"type": "invalid_data", "message": msg})
}
