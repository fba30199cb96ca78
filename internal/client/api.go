package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"
)

// Backend is the server surface the sync and dispatch layers need. The HTTP
// implementation is API; tests substitute an in-memory fake.
type Backend interface {
	Categories(ctx context.Context) ([]dto.CategoryResponse, error)
	Balances(ctx context.Context) (dto.BalancesResponse, error)
	Sales(ctx context.Context) ([]dto.SaleResponse, error)
	Expenses(ctx context.Context) ([]dto.ExpenseResponse, error)
	Deposits(ctx context.Context) ([]dto.DepositResponse, error)

	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	RecordExpense(ctx context.Context, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error)
	RecordDeposit(ctx context.Context, req dto.RecordDepositRequest) (*dto.DepositResponse, error)
	AdjustStock(ctx context.Context, categoryID string, delta int) (*dto.CategoryResponse, error)

	OpenFeed(ctx context.Context) (io.ReadCloser, error)
}

// API is the HTTP backend. It holds the token pair and transparently
// refreshes the access token once on a 401 before giving up with
// ErrSessionExpired.
type API struct {
	base string
	http *http.Client

	mu      sync.Mutex
	access  string
	refresh string
}

func NewAPI(baseURL string) *API {
	return &API{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens installs a token pair obtained out of band (e.g. from keyring).
func (a *API) SetTokens(access, refresh string) {
	a.mu.Lock()
	a.access, a.refresh = access, refresh
	a.mu.Unlock()
}

// Login authenticates with phone + PIN and stores the resulting tokens.
func (a *API) Login(ctx context.Context, phone, pin string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := a.do(ctx, http.MethodPost, "/v1/auth/login",
		dto.LoginRequest{Phone: phone, PIN: pin}, &resp)
	if err != nil {
		return nil, err
	}
	a.SetTokens(resp.AccessToken, resp.RefreshToken)
	return &resp, nil
}

func (a *API) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	var out []dto.CategoryResponse
	return out, a.do(ctx, http.MethodGet, "/v1/categories", nil, &out)
}

func (a *API) Balances(ctx context.Context) (dto.BalancesResponse, error) {
	var out dto.BalancesResponse
	return out, a.do(ctx, http.MethodGet, "/v1/balances", nil, &out)
}

func (a *API) Sales(ctx context.Context) ([]dto.SaleResponse, error) {
	var out []dto.SaleResponse
	return out, a.do(ctx, http.MethodGet, "/v1/sales", nil, &out)
}

func (a *API) Expenses(ctx context.Context) ([]dto.ExpenseResponse, error) {
	var out []dto.ExpenseResponse
	return out, a.do(ctx, http.MethodGet, "/v1/expenses", nil, &out)
}

func (a *API) Deposits(ctx context.Context) ([]dto.DepositResponse, error) {
	var out []dto.DepositResponse
	return out, a.do(ctx, http.MethodGet, "/v1/deposits", nil, &out)
}

func (a *API) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	if err := a.do(ctx, http.MethodPost, "/v1/sales", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) RecordExpense(ctx context.Context, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	var out dto.ExpenseResponse
	if err := a.do(ctx, http.MethodPost, "/v1/expenses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) RecordDeposit(ctx context.Context, req dto.RecordDepositRequest) (*dto.DepositResponse, error) {
	var out dto.DepositResponse
	if err := a.do(ctx, http.MethodPost, "/v1/deposits", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) AdjustStock(ctx context.Context, categoryID string, delta int) (*dto.CategoryResponse, error) {
	var out dto.CategoryResponse
	path := "/v1/categories/" + categoryID + "/stock"
	if err := a.do(ctx, http.MethodPatch, path, dto.AdjustStockRequest{Delta: delta}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenFeed opens the server-sent-event stream. The caller owns the body and
// must close it; the stream stays open until the server or caller ends it.
func (a *API) OpenFeed(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/v1/feed", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	a.authorize(req)

	// The stream outlives any sane request timeout.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, a.decodeError(resp)
	}
	return resp.Body, nil
}

func (a *API) authorize(req *http.Request) {
	a.mu.Lock()
	token := a.access
	a.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do runs one JSON round trip, retrying exactly once through the refresh
// flow on a 401.
func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := a.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := a.refreshTokens(ctx); err != nil {
			return err
		}
		if resp, err = a.send(ctx, method, path, body); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return a.decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.authorize(req)
	return a.http.Do(req)
}

func (a *API) refreshTokens(ctx context.Context) error {
	a.mu.Lock()
	refresh := a.refresh
	a.mu.Unlock()
	if refresh == "" {
		return ErrSessionExpired
	}

	resp, err := a.send(ctx, http.MethodPost, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrSessionExpired
	}

	var lr dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return ErrSessionExpired
	}
	a.SetTokens(lr.AccessToken, lr.RefreshToken)
	return nil
}

// decodeError turns an error response into its typed sentinel via the
// stable wire code. An unparseable body still yields a usable error.
func (a *API) decodeError(resp *http.Response) error {
	var envelope struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Code == "" {
		return fmt.Errorf("%w: http %d", ErrServer, resp.StatusCode)
	}
	return apiError(envelope.Code, envelope.Detail)
}
