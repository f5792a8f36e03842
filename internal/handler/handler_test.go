package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/export"
)

// --- in-memory fakes ---

type fakeSessionStore struct {
	sessions map[string]*auth.Session
}

func (s *fakeSessionStore) Save(_ context.Context, sess *auth.Session) error {
	s.sessions[sess.TokenHash] = sess
	return nil
}

func (s *fakeSessionStore) Load(_ context.Context, hash string) (*auth.Session, error) {
	sess, ok := s.sessions[hash]
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return sess, nil
}

func (s *fakeSessionStore) Clear(_ context.Context, hash string) error {
	delete(s.sessions, hash)
	return nil
}

type fakeProductRepo struct {
	products map[string]product.Product
	nextID   int
}

func (r *fakeProductRepo) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *product.Product) (string, error) {
	r.nextID++
	id := fmt.Sprintf("prod-%d", r.nextID)
	cp := *p
	cp.ID = id
	r.products[id] = cp
	return id, nil
}

func (r *fakeProductRepo) Update(_ context.Context, id string, p *product.Product) error {
	if _, ok := r.products[id]; !ok {
		return product.ErrNotFound
	}
	cp := *p
	cp.ID = id
	r.products[id] = cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]customer.Customer
	nextID    int
}

func (r *fakeCustomerRepo) List(context.Context) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *customer.Customer) (string, error) {
	r.nextID++
	id := fmt.Sprintf("cust-%d", r.nextID)
	cp := *c
	cp.ID = id
	r.customers[id] = cp
	return id, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, id string, c *customer.Customer) error {
	if _, ok := r.customers[id]; !ok {
		return customer.ErrNotFound
	}
	cp := *c
	cp.ID = id
	r.customers[id] = cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.customers[id]; !ok {
		return customer.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

type fakeOrderRepo struct {
	orders []order.Order
	nextID int
	notify func(order.Snapshot)
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) (string, error) {
	r.nextID++
	id := fmt.Sprintf("order-%d", r.nextID)
	cp := *o
	cp.ID = id
	r.orders = append(r.orders, cp)
	r.changed()
	return id, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, id string, o *order.Order) error {
	for i := range r.orders {
		if r.orders[i].ID == id {
			cp := *o
			cp.ID = id
			cp.CreatedAt = r.orders[i].CreatedAt
			r.orders[i] = cp
			r.changed()
			return nil
		}
	}
	return errors.New("order not found")
}

func (r *fakeOrderRepo) Delete(_ context.Context, id string) error {
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			r.changed()
			return nil
		}
	}
	return nil
}

func (r *fakeOrderRepo) GetAll(context.Context) (order.Snapshot, error) {
	out := make(order.Snapshot, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *fakeOrderRepo) Watch(_ context.Context, onSnapshot func(order.Snapshot)) (func(), error) {
	r.notify = onSnapshot
	return func() {}, nil
}

func (r *fakeOrderRepo) changed() {
	if r.notify != nil {
		snap := make(order.Snapshot, len(r.orders))
		copy(snap, r.orders)
		r.notify(snap)
	}
}

type fakeExporter struct {
	lastSheet export.Sheet
}

func (e *fakeExporter) Export(_ context.Context, sheet export.Sheet) (export.Handle, error) {
	e.lastSheet = sheet
	return export.Handle{Path: "/tmp/fake.xlsx"}, nil
}

type fakeSharer struct{}

func (fakeSharer) Share(_ context.Context, h export.Handle) (string, error) {
	return "https://share.test/" + h.Path, nil
}

// --- fixture ---

type fixture struct {
	server   *httptest.Server
	token    string
	exporter *fakeExporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions := &fakeSessionStore{sessions: make(map[string]*auth.Session)}
	authSvc := auth.NewService(sessions, auth.Config{
		Username:   "admin",
		Password:   "hunter2",
		SigningKey: []byte("test-key"),
		Pepper:     []byte("test-pepper"),
		SessionTTL: time.Hour,
	})

	products := &fakeProductRepo{products: make(map[string]product.Product)}
	customers := &fakeCustomerRepo{customers: make(map[string]customer.Customer)}
	orders := &fakeOrderRepo{}

	snapshots := order.NewSnapshotCache()
	stop, err := snapshots.Follow(context.Background(), orders)
	require.NoError(t, err)
	t.Cleanup(stop)

	exporter := &fakeExporter{}
	h := NewHandler(
		authSvc,
		products,
		customers,
		orders,
		order.NewService(products, orders),
		snapshots,
		exporter,
		fakeSharer{},
	)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	f := &fixture{server: server, exporter: exporter}
	f.token = f.login(t)
	return f
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/login", `{"username":"admin","password":"hunter2"}`, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (f *fixture) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// --- tests ---

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/orders", "/products", "/customers", "/reports/counts"} {
		resp := f.do(t, http.MethodGet, path, "", "")
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := f.do(t, http.MethodGet, "/orders", "", "bogus-token")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`, "")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/logout", "", f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/orders", "", f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductCRUD(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/products", `{"name":"Latte","price":"4.80"}`, f.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Latte", created.Name)
	assert.InDelta(t, 4.80, created.Price, 1e-9)

	// Price as a JSON number is accepted too.
	resp = f.do(t, http.MethodPost, "/products", `{"name":"Espresso","price":3.5}`, f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/products/"+created.ID, "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Name string `json:"name"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "Latte", got.Name)

	resp = f.do(t, http.MethodPut, "/products/"+created.ID, `{"name":"Flat White","price":"5.00"}`, f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/products/"+created.ID, "", f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/products/"+created.ID, "", f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCustomerCRUD(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/customers", `{"name":"Alice","mobile":"555-0100","gender":"female"}`, f.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.ID)

	resp = f.do(t, http.MethodGet, "/customers", "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		Name string `json:"name"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)

	resp = f.do(t, http.MethodDelete, "/customers/missing", "", f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func createProduct(t *testing.T, f *fixture, name, price string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/products", fmt.Sprintf(`{"name":%q,"price":%q}`, name, price), f.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)
	return created.ID
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	productID := createProduct(t, f, "Latte", "4.00")

	body := fmt.Sprintf(`{
		"customerName": "Alice",
		"customerMobile": "555-0100",
		"paymentType": "cash",
		"items": [{"productId": %q, "quantity": "3"}]
	}`, productID)

	resp := f.do(t, http.MethodPost, "/orders", body, f.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID    string  `json:"id"`
		Total float64 `json:"total"`
		Items []struct {
			ProductName string  `json:"productName"`
			UnitPrice   float64 `json:"unitPrice"`
			Quantity    int     `json:"quantity"`
		} `json:"items"`
	}
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.InDelta(t, 12.0, created.Total, 1e-9)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Latte", created.Items[0].ProductName)
	assert.Equal(t, 3, created.Items[0].Quantity)

	// Numeric quantity works the same as string quantity.
	resp = f.do(t, http.MethodPost, "/orders", fmt.Sprintf(
		`{"customerName":"Bob","paymentType":"credit","items":[{"productId":%q,"quantity":2}]}`, productID), f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/orders", "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &list)
	assert.Len(t, list, 2)

	resp = f.do(t, http.MethodDelete, "/orders/"+created.ID, "", f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateOrderRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/orders",
		`{"customerName":"Alice","paymentType":"cash","items":[{"productId":"ghost","quantity":"1"}]}`, f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	productID := createProduct(t, f, "Latte", "4.00")

	for name, body := range map[string]string{
		"no items":       `{"customerName":"Alice","paymentType":"cash","items":[]}`,
		"no customer":    fmt.Sprintf(`{"paymentType":"cash","items":[{"productId":%q,"quantity":"1"}]}`, productID),
		"bad payment":    fmt.Sprintf(`{"customerName":"Alice","paymentType":"iou","items":[{"productId":%q,"quantity":"1"}]}`, productID),
		"blank quantity": fmt.Sprintf(`{"customerName":"Alice","paymentType":"cash","items":[{"productId":%q,"quantity":""}]}`, productID),
	} {
		resp := f.do(t, http.MethodPost, "/orders", body, f.token)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestReportCounts(t *testing.T) {
	f := newFixture(t)
	productID := createProduct(t, f, "Latte", "4.00")

	resp := f.do(t, http.MethodPost, "/orders", fmt.Sprintf(
		`{"customerName":"Alice","paymentType":"cash","items":[{"productId":%q,"quantity":"1"}]}`, productID), f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/reports/counts", "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var counts struct {
		Daily  int `json:"daily"`
		Weekly int `json:"weekly"`
		Yearly int `json:"yearly"`
	}
	decodeBody(t, resp, &counts)
	assert.Equal(t, 1, counts.Daily)
	assert.Equal(t, 1, counts.Weekly)
	assert.Equal(t, 1, counts.Yearly)
}

func TestReportCountsRejectsUnknownZone(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/reports/counts?tz=Mars%2FOlympus", "", f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportReport(t *testing.T) {
	f := newFixture(t)
	productID := createProduct(t, f, "Latte", "4.00")

	resp := f.do(t, http.MethodPost, "/orders", fmt.Sprintf(
		`{"customerName":"Alice","paymentType":"cash","items":[{"productId":%q,"quantity":"2"}]}`, productID), f.token)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/reports/export?timeframe=weekly", "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Report string `json:"report"`
		Rows   int    `json:"rows"`
		URL    string `json:"url"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "weekly", out.Report)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, "https://share.test//tmp/fake.xlsx", out.URL)
	assert.Equal(t, "weekly-report", f.exporter.lastSheet.Name)

	resp = f.do(t, http.MethodPost, "/reports/export?timeframe=customer", "", f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, "customer-report", f.exporter.lastSheet.Name)
}

func TestExportReportRejectsUnknownTimeframe(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/reports/export?timeframe=fortnightly", "", f.token)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
