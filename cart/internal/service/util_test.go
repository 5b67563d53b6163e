package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Alturino/medkit/cart/internal/repository"
	"github.com/Alturino/medkit/cart/pkg/pricing"
	"github.com/Alturino/medkit/internal/config"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/session"
	orderRequest "github.com/Alturino/medkit/order/pkg/request"
)

type fakeProduct struct {
	ID     string   `json:"_id"`
	Name   string   `json:"productName"`
	Images []string `json:"productImages,omitempty"`
}

type fakeLine struct {
	Product   fakeProduct     `json:"product"`
	BrandName string          `json:"brandName"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type lineBody struct {
	ProductID string `json:"productId"`
	BrandName string `json:"brandName"`
	Quantity  int    `json:"quantity"`
}

type failure struct {
	status int
	body   string
}

// fakeCommerceAPI mimics the remote cart: it merges repeated adds of the same
// variant and drops lines whose quantity falls to zero or below.
type fakeCommerceAPI struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	carts  map[string][]fakeLine
	fail   *failure
	orders []orderRequest.CreateOrder
	calls  int
}

func newFakeCommerceAPI() *fakeCommerceAPI {
	return &fakeCommerceAPI{
		prices: map[string]decimal.Decimal{
			"P1/Acme": decimal.NewFromInt(1000),
			"P1/Beta": decimal.NewFromInt(1200),
			"P2/Beta": decimal.NewFromInt(5000),
		},
		carts: map[string][]fakeLine{},
	}
}

func (f *fakeCommerceAPI) failNext(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = &failure{status: status, body: body}
}

func (f *fakeCommerceAPI) seed(sessionID string, lines ...fakeLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[sessionID] = lines
}

func (f *fakeCommerceAPI) router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cart/{sessionId}", f.handle(f.find)).Methods(http.MethodGet)
	api.HandleFunc("/cart/{sessionId}/add", f.handle(f.add)).Methods(http.MethodPost)
	api.HandleFunc("/cart/{sessionId}/update", f.handle(f.update)).Methods(http.MethodPut)
	api.HandleFunc("/cart/{sessionId}/remove", f.handle(f.remove)).Methods(http.MethodDelete)
	api.HandleFunc("/cart/{sessionId}/clear", f.handle(f.clear)).Methods(http.MethodDelete)
	api.HandleFunc("/orders", f.createOrder).Methods(http.MethodPost)
	return router
}

func (f *fakeCommerceAPI) handle(
	fn func(sessionID string, body lineBody) []fakeLine,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls++

		if f.fail != nil {
			fail := f.fail
			f.fail = nil
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}

		body := lineBody{}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
				return
			}
		}
		lines := fn(mux.Vars(r)["sessionId"], body)
		if lines == nil {
			lines = []fakeLine{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"cart": map[string]any{"items": lines}})
	}
}

func (f *fakeCommerceAPI) find(sessionID string, _ lineBody) []fakeLine {
	return f.carts[sessionID]
}

func (f *fakeCommerceAPI) add(sessionID string, body lineBody) []fakeLine {
	lines := f.carts[sessionID]
	for i := range lines {
		if lines[i].Product.ID == body.ProductID && lines[i].BrandName == body.BrandName {
			lines[i].Quantity += body.Quantity
			return lines
		}
	}
	lines = append(lines, fakeLine{
		Product:   fakeProduct{ID: body.ProductID, Name: "Product " + body.ProductID},
		BrandName: body.BrandName,
		Price:     f.prices[body.ProductID+"/"+body.BrandName],
		Quantity:  body.Quantity,
	})
	f.carts[sessionID] = lines
	return lines
}

func (f *fakeCommerceAPI) update(sessionID string, body lineBody) []fakeLine {
	lines := f.carts[sessionID]
	for i := range lines {
		if lines[i].Product.ID == body.ProductID && lines[i].BrandName == body.BrandName {
			if body.Quantity <= 0 {
				lines = append(lines[:i], lines[i+1:]...)
			} else {
				lines[i].Quantity = body.Quantity
			}
			break
		}
	}
	f.carts[sessionID] = lines
	return lines
}

func (f *fakeCommerceAPI) remove(sessionID string, body lineBody) []fakeLine {
	body.Quantity = 0
	return f.update(sessionID, body)
}

func (f *fakeCommerceAPI) clear(sessionID string, _ lineBody) []fakeLine {
	delete(f.carts, sessionID)
	return nil
}

func (f *fakeCommerceAPI) createOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		fail := f.fail
		f.fail = nil
		w.WriteHeader(fail.status)
		_, _ = w.Write([]byte(fail.body))
		return
	}

	order := orderRequest.CreateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
		return
	}
	f.orders = append(f.orders, order)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"order": map[string]any{
		"_id":       "O1",
		"sessionId": order.SessionID,
		"items":     order.Items,
		"total":     order.Total,
		"status":    order.Status,
	}})
}

type testEnv struct {
	api       *fakeCommerceAPI
	server    *httptest.Server
	session   *session.Provider
	sessionID string
	svc       *CartService
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	api := newFakeCommerceAPI()
	server := httptest.NewServer(api.router())
	t.Cleanup(server.Close)

	client := inHttp.NewClient(config.Api{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Breaker: config.Breaker{MaxConsecutiveFailures: 100},
	})

	store := session.NewMemoryStore()
	sessionID, err := store.SetIfAbsent(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("failed seeding session with error: %s", err)
	}
	provider := session.NewProvider(store)

	svc, err := NewCartService(
		provider,
		repository.NewCartRepository(client),
		repository.NewOrderRepository(client),
		pricing.Default(),
	)
	if err != nil {
		t.Fatalf("failed creating cart service with error: %s", err)
	}

	return &testEnv{api: api, server: server, session: provider, sessionID: sessionID, svc: svc}
}
