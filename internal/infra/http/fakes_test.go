package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/clinic-stock/internal/auth"
	"github.com/Spok95/clinic-stock/internal/domain/dashboard"
	"github.com/Spok95/clinic-stock/internal/domain/inventory"
	"github.com/Spok95/clinic-stock/internal/domain/materials"
	"github.com/Spok95/clinic-stock/internal/domain/requests"
	"github.com/Spok95/clinic-stock/internal/domain/users"
	"github.com/Spok95/clinic-stock/internal/infra/metrics"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

// world is an in-memory stand-in for every repository.
type world struct {
	mu        sync.Mutex
	users     map[int64]*users.User
	activity  []users.Activity
	materials map[int64]*materials.Material
	batches   map[int64]*materials.Batch
	txs       []inventory.Transaction
	logs      []inventory.NarcoticLog
	requests  map[int64]*requests.Request
	nextID    int64
}

func newWorld() *world {
	return &world{
		users:     map[int64]*users.User{},
		materials: map[int64]*materials.Material{},
		batches:   map[int64]*materials.Batch{},
		requests:  map[int64]*requests.Request{},
		nextID:    100,
	}
}

func (w *world) id() int64 { w.nextID++; return w.nextID }

func (w *world) addUser(t *testing.T, email, password string, role vocab.Role) *users.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	u := &users.User{ID: w.id(), Email: email, FullName: strings.Split(email, "@")[0], Role: role, IsActive: true, HashedPassword: hash}
	w.users[u.ID] = u
	return u
}

func (w *world) addMaterial(name string, unit vocab.Unit, narcotic bool, qty ...float64) *materials.Material {
	m := &materials.Material{ID: w.id(), Name: name, Unit: unit, IsNarcotic: narcotic, MinQuantity: 1}
	w.materials[m.ID] = m
	for _, q := range qty {
		b := &materials.Batch{ID: w.id(), MaterialID: m.ID, InitialQuantity: q, CurrentQuantity: q}
		w.batches[b.ID] = b
	}
	return m
}

func (w *world) total(materialID int64) float64 {
	var sum float64
	for _, b := range w.batches {
		if b.MaterialID == materialID {
			sum += b.CurrentQuantity
		}
	}
	return sum
}

// users

type fakeUsers struct{ *world }

func (f fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f fakeUsers) List(context.Context) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []users.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f fakeUsers) Create(_ context.Context, c users.Create, hash string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == c.Email {
			return nil, users.ErrDuplicateEmail
		}
	}
	u := &users.User{ID: f.id(), Email: c.Email, FullName: c.FullName, Role: c.Role, IsActive: true, HashedPassword: hash}
	f.users[u.ID] = u
	return u, nil
}

func (f fakeUsers) LogActivity(_ context.Context, userID int64, action, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, users.Activity{ID: f.id(), UserID: userID, Action: action, Details: details})
	return nil
}

func (f fakeUsers) Activity(_ context.Context, userID int64, _ int) ([]users.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []users.Activity{}
	for _, a := range f.activity {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// materials

type fakeMaterials struct{ *world }

func (f fakeMaterials) List(_ context.Context, p materials.ListParams) ([]materials.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []materials.Material{}
	for _, m := range f.materials {
		if p.Query == "" || strings.Contains(strings.ToLower(m.Name), strings.ToLower(p.Query)) {
			cp := *m
			cp.TotalQuantity = f.total(m.ID)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f fakeMaterials) Get(_ context.Context, id int64) (*materials.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok {
		return nil, materials.ErrNotFound
	}
	cp := *m
	cp.TotalQuantity = f.total(id)
	return &cp, nil
}

func (f fakeMaterials) Create(ctx context.Context, in materials.Input) (*materials.Material, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	for _, m := range f.materials {
		if m.Name == in.Name {
			f.mu.Unlock()
			return nil, materials.ErrDuplicateName
		}
	}
	var qty []float64
	if in.InitialQuantity > 0 {
		qty = append(qty, in.InitialQuantity)
	}
	m := f.addMaterial(in.Name, in.Unit, in.IsNarcotic, qty...)
	m.MinQuantity = in.MinQuantity
	f.mu.Unlock()
	return f.Get(ctx, m.ID)
}

func (f fakeMaterials) Update(ctx context.Context, id int64, in materials.Input) (*materials.Material, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	m, ok := f.materials[id]
	if !ok {
		f.mu.Unlock()
		return nil, materials.ErrNotFound
	}
	m.Name, m.Unit, m.MinQuantity, m.IsNarcotic = in.Name, in.Unit, in.MinQuantity, in.IsNarcotic
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f fakeMaterials) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.materials[id]; !ok {
		return materials.ErrNotFound
	}
	for _, t := range f.txs {
		if t.MaterialID == id {
			return materials.ErrHasHistory
		}
	}
	delete(f.materials, id)
	for bid, b := range f.batches {
		if b.MaterialID == id {
			delete(f.batches, bid)
		}
	}
	return nil
}

func (f fakeMaterials) Batches(_ context.Context, materialID int64) ([]materials.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.materials[materialID]; !ok {
		return nil, materials.ErrNotFound
	}
	out := []materials.Batch{}
	for _, b := range f.batches {
		if b.MaterialID == materialID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// inventory applies the same rule function as the SQL repository.

type fakeInventory struct{ *world }

func (f fakeInventory) Apply(_ context.Context, actorID int64, in inventory.TransactionInput) (*inventory.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[in.BatchID]
	if !ok {
		return nil, inventory.ErrBatchNotFound
	}
	m := f.materials[b.MaterialID]
	st := inventory.BatchState{MaterialID: b.MaterialID, Current: b.CurrentQuantity, IsNarcotic: m.IsNarcotic}
	if err := inventory.CheckTransaction(st, &in); err != nil {
		return nil, err
	}
	b.CurrentQuantity += in.Delta
	t := inventory.Transaction{ID: f.id(), BatchID: in.BatchID, MaterialID: in.MaterialID, Delta: in.Delta, Note: in.Note, UserID: actorID}
	f.txs = append(f.txs, t)
	if in.NarcoticLog != nil {
		u := f.users[actorID]
		f.logs = append(f.logs, inventory.NarcoticLog{
			ID: f.id(), TransactionID: t.ID, PatientInfo: in.NarcoticLog.PatientInfo, Reason: in.NarcoticLog.Reason, Delta: in.Delta,
			Material: inventory.JournalMaterial{ID: m.ID, Name: m.Name, Unit: m.Unit, IsNarcotic: true},
			User:     inventory.JournalUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, IsActive: true},
		})
	}
	return &t, nil
}

func (f fakeInventory) NarcoticLogs(context.Context, int, int) ([]inventory.NarcoticLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]inventory.NarcoticLog{}, f.logs...), nil
}

// requests

type fakeRequests struct{ *world }

func (f fakeRequests) Create(_ context.Context, requesterID int64, items []requests.Item) (*requests.Request, error) {
	if err := requests.ValidateItems(items); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &requests.Request{ID: f.id(), RequesterID: requesterID, Status: requests.StatusPending, Items: items}
	f.requests[r.ID] = r
	return r, nil
}

func (f fakeRequests) List(context.Context) ([]requests.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []requests.Request{}
	for _, r := range f.requests {
		out = append(out, *r)
	}
	return out, nil
}

func (f fakeRequests) Approve(_ context.Context, _ int64, id int64) (*requests.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, requests.ErrNotFound
	}
	if r.Status != requests.StatusPending {
		return nil, requests.ErrNotPending
	}
	for _, it := range r.Items {
		var m *materials.Material
		for _, cand := range f.materials {
			if strings.EqualFold(cand.Name, it.MaterialName) {
				m = cand
			}
		}
		if m == nil {
			m = f.addMaterial(it.MaterialName, it.Unit, false)
		}
		b := &materials.Batch{ID: f.id(), MaterialID: m.ID, InitialQuantity: it.Quantity, CurrentQuantity: it.Quantity, ExpirationDate: it.ExpirationDate}
		f.batches[b.ID] = b
	}
	r.Status = requests.StatusApproved
	cp := *r
	return &cp, nil
}

type fakeDashboard struct{ *world }

func (f fakeDashboard) Stats(_ context.Context, now time.Time) (*dashboard.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var (
		mats    []materials.Material
		batches []materials.Batch
	)
	for _, m := range f.materials {
		cp := *m
		cp.TotalQuantity = f.total(m.ID)
		mats = append(mats, cp)
	}
	for _, b := range f.batches {
		batches = append(batches, *b)
	}
	return dashboard.Build(now, mats, batches), nil
}

type testEnv struct {
	*world
	srv     *httptest.Server
	tokens  *auth.Issuer
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	w := newWorld()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	s := New(":0", Deps{
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:    tokens,
		Users:     fakeUsers{w},
		Materials: fakeMaterials{w},
		Inventory: fakeInventory{w},
		Requests:  fakeRequests{w},
		Dashboard: fakeDashboard{w},
		Metrics:   m,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{world: w, srv: srv, tokens: tokens, metrics: m}
}

func (e *testEnv) tokenFor(t *testing.T, u *users.User) string {
	t.Helper()
	tok, err := e.tokens.Issue(auth.Principal{UserID: u.ID, Role: u.Role})
	if err != nil {
		t.Fatal(err)
	}
	return tok
}
