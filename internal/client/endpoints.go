package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

/* Auth */

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var t Token
	form := url.Values{"username": {email}, "password": {password}}
	err := c.postForm(ctx, "/token", form, &t)
	return t, err
}

/* Users */

func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/users/me/", nil, nil, &u)
	return u, err
}

func (c *Client) MyActivity(ctx context.Context) ([]Activity, error) {
	var out []Activity
	err := c.do(ctx, http.MethodGet, "/users/me/activity", nil, nil, &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &out)
	return out, err
}

func (c *Client) User(ctx context.Context, id int64) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &u)
	return u, err
}

func (c *Client) UserActivity(ctx context.Context, id int64) ([]Activity, error) {
	var out []Activity
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/activity", id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, in UserCreate) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/users/", nil, in, &u)
	return u, err
}

/* Materials */

// Materials lists the first page of the catalog; q is passed through to the
// server as a name filter.
func (c *Client) Materials(ctx context.Context, q string) ([]Material, error) {
	return c.MaterialsPage(ctx, q, 0, 0)
}

// MaterialsPage fetches one window of the catalog. limit 0 leaves the
// server default.
func (c *Client) MaterialsPage(ctx context.Context, q string, skip, limit int) ([]Material, error) {
	query := pageQuery(skip, limit)
	if q != "" {
		query.Set("q", q)
	}
	var out []Material
	err := c.do(ctx, http.MethodGet, "/materials/", query, nil, &out)
	return out, err
}

// AllMaterials walks the whole catalog page by page.
func (c *Client) AllMaterials(ctx context.Context) ([]Material, error) {
	return collect(ctx, func(ctx context.Context, skip, limit int) ([]Material, error) {
		return c.MaterialsPage(ctx, "", skip, limit)
	})
}

func (c *Client) Material(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := c.do(ctx, http.MethodGet, "/materials/"+strconv.FormatInt(id, 10), nil, nil, &m)
	return m, err
}

func (c *Client) CreateMaterial(ctx context.Context, in MaterialInput) (Material, error) {
	var m Material
	err := c.do(ctx, http.MethodPost, "/materials/", nil, in, &m)
	return m, err
}

func (c *Client) UpdateMaterial(ctx context.Context, id int64, in MaterialInput) (Material, error) {
	var m Material
	err := c.do(ctx, http.MethodPut, "/materials/"+strconv.FormatInt(id, 10), nil, in, &m)
	return m, err
}

func (c *Client) DeleteMaterial(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/materials/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) Batches(ctx context.Context, materialID int64) ([]Batch, error) {
	var out []Batch
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/materials/%d/batches", materialID), nil, nil, &out)
	return out, err
}

/* Transactions & journal */

// CreateTransaction is the single write of the dispensing workflow.
func (c *Client) CreateTransaction(ctx context.Context, in TransactionCreate) (Transaction, error) {
	var tr Transaction
	err := c.do(ctx, http.MethodPost, "/transactions/", nil, in, &tr)
	return tr, err
}

// NarcoticLogsPage fetches one window of the journal, newest first.
func (c *Client) NarcoticLogsPage(ctx context.Context, skip, limit int) ([]NarcoticLog, error) {
	var out []NarcoticLog
	err := c.do(ctx, http.MethodGet, "/narcotic-logs/", pageQuery(skip, limit), nil, &out)
	return out, err
}

// AllNarcoticLogs walks the whole journal page by page.
func (c *Client) AllNarcoticLogs(ctx context.Context) ([]NarcoticLog, error) {
	return collect(ctx, c.NarcoticLogsPage)
}

/* Requests */

func (c *Client) Requests(ctx context.Context) ([]Request, error) {
	var out []Request
	err := c.do(ctx, http.MethodGet, "/requests/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateRequest(ctx context.Context, items []RequestItem) (Request, error) {
	var r Request
	body := struct {
		Items []RequestItem `json:"items"`
	}{Items: items}
	err := c.do(ctx, http.MethodPost, "/requests/", nil, body, &r)
	return r, err
}

func (c *Client) ApproveRequest(ctx context.Context, id int64) (Request, error) {
	var r Request
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/requests/%d/approve", id), nil, nil, &r)
	return r, err
}

/* Dashboard */

func (c *Client) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &s)
	return s, err
}

/* Paging */

// ExportPage is the window used when a whole collection is fetched.
// The server caps list windows at 500.
const ExportPage = 500

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// collect keeps asking for pages until the server returns a short one.
func collect[T any](ctx context.Context, page func(ctx context.Context, skip, limit int) ([]T, error)) ([]T, error) {
	out := []T{}
	for skip := 0; ; skip += ExportPage {
		chunk, err := page(ctx, skip, ExportPage)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if len(chunk) < ExportPage {
			return out, nil
		}
	}
}
