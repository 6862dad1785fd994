// Package steadfast Steadfast快递接口客户端
package steadfast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
)

const (
	breakerName = "steadfast"
	// tokenLeeway Token提前刷新的时间
	tokenLeeway = time.Minute
	// defaultTokenTTL 接口没有返回expires_in时使用
	defaultTokenTTL = time.Hour
)

// APIError 快递平台返回的业务错误（4xx或status!=200）
type APIError struct {
	HTTPStatus int
	Status     int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("steadfast: http=%d status=%d %s", e.HTTPStatus, e.Status, e.Message)
}

// isServerSide 只有服务端错误、网络错误计入熔断
func isServerSide(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus >= http.StatusInternalServerError
	}
	return true
}

// Client Steadfast客户端，所有请求经过熔断器
type Client struct {
	baseURL   string
	apiKey    string
	secretKey string

	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ courier.Client = (*Client)(nil)

// NewClient 创建客户端
func NewClient(cfg config.CourierConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New(breakerName, circuitbreaker.Config{
			FailureThreshold: cfg.FailureThreshold,
			OpenTimeout:      cfg.OpenTimeout,
			IsFailure:        isServerSide,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				metrics.SetBreakerState(name, int(to))
				logger.Warn("熔断器状态变化", map[string]interface{}{
					"name": name,
					"from": from.String(),
					"to":   to.String(),
				})
			},
		}),
		now: time.Now,
	}
}

// BreakerState 熔断器当前状态
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// envelope 大多数接口都带status和message
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e envelope) check(httpStatus int) error {
	if httpStatus >= http.StatusBadRequest || (e.Status != 0 && e.Status != http.StatusOK) {
		return &APIError{HTTPStatus: httpStatus, Status: e.Status, Message: e.Message}
	}
	return nil
}

type enveloped interface {
	check(httpStatus int) error
}

// flexString 同时接受JSON数字和字符串（consignment_id在接口里是数字）
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// call 在熔断器保护下发起请求，结果解码到out
func (c *Client) call(ctx context.Context, method, path string, body interface{}, out enveloped) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.send(ctx, method, path, body, out, true)
	})
	metrics.ObserveBreaker(breakerName, err, errors.Is(err, circuitbreaker.ErrOpenState))
	if err == nil {
		return nil
	}

	logger.Ctx(ctx).Error().Err(err).Str("path", path).Msg("调用快递接口失败")
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && !isServerSide(err) {
		return apperrors.WithCode(err, apperrors.ErrCodeCourierError, "快递平台拒绝请求: "+apiErr.Message)
	}
	return apperrors.WithCode(err, apperrors.ErrCodeCourierError, apperrors.ErrCourierError.Message)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, out enveloped, retryAuth bool) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Token被提前作废时重新获取一次
	if resp.StatusCode == http.StatusUnauthorized && retryAuth {
		c.invalidateToken()
		return c.send(ctx, method, path, body, out, false)
	}
	return decode(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func decode(resp *http.Response, out enveloped) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("解析快递接口响应失败: %w", err)
	}
	return out.check(resp.StatusCode)
}

type tokenResponse struct {
	envelope
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken 返回缓存的Token，快过期时重新获取
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry.Add(-tokenLeeway)) {
		return c.token, nil
	}

	resp, err := c.do(ctx, http.MethodPost, "/get_token", map[string]string{
		"api_key":    c.apiKey,
		"secret_key": c.secretKey,
	}, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out tokenResponse
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &APIError{HTTPStatus: resp.StatusCode, Message: "empty access token"}
	}

	ttl := defaultTokenTTL
	if out.ExpiresIn > 0 {
		ttl = time.Duration(out.ExpiresIn) * time.Second
	}
	c.token = out.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

type balanceResponse struct {
	envelope
	CurrentBalance float64 `json:"current_balance"`
}

func (c *Client) Balance(ctx context.Context) (float64, error) {
	var out balanceResponse
	if err := c.call(ctx, http.MethodGet, "/get_balance", nil, &out); err != nil {
		return 0, err
	}
	return out.CurrentBalance, nil
}

type createOrderRequest struct {
	Invoice          string  `json:"invoice"`
	RecipientName    string  `json:"recipient_name"`
	RecipientPhone   string  `json:"recipient_phone"`
	RecipientAddress string  `json:"recipient_address"`
	CODAmount        int64   `json:"cod_amount"`
	Note             string  `json:"note"`
	ItemType         string  `json:"item_type"`
	ItemQuantity     int     `json:"item_quantity"`
	ItemWeight       float64 `json:"item_weight"`
	ItemDescription  string  `json:"item_description"`
	DeliveryType     string  `json:"delivery_type"`
}

type createOrderResponse struct {
	envelope
	Consignment struct {
		ConsignmentID flexString `json:"consignment_id"`
		Invoice       string     `json:"invoice"`
		TrackingCode  string     `json:"tracking_code"`
		Status        string     `json:"status"`
	} `json:"consignment"`
}

func (c *Client) CreateConsignment(ctx context.Context, req courier.ConsignmentRequest) (*courier.Consignment, error) {
	body := createOrderRequest{
		Invoice:          req.Invoice,
		RecipientName:    req.RecipientName,
		RecipientPhone:   req.RecipientPhone,
		RecipientAddress: req.RecipientAddress,
		CODAmount:        req.CODAmount,
		Note:             req.Note,
		ItemType:         "book",
		ItemQuantity:     req.TotalLot,
		ItemWeight:       req.Weight,
		ItemDescription:  req.ItemDescription,
		DeliveryType:     "regular",
	}

	var out createOrderResponse
	if err := c.call(ctx, http.MethodPost, "/create_order", body, &out); err != nil {
		return nil, err
	}
	return &courier.Consignment{
		ConsignmentID: string(out.Consignment.ConsignmentID),
		Invoice:       out.Consignment.Invoice,
		TrackingCode:  out.Consignment.TrackingCode,
		Status:        out.Consignment.Status,
	}, nil
}

type statusResponse struct {
	envelope
	DeliveryStatus string `json:"delivery_status"`
}

func (c *Client) StatusByConsignmentID(ctx context.Context, consignmentID string) (string, error) {
	var out statusResponse
	if err := c.call(ctx, http.MethodGet, "/status_by_cid/"+consignmentID, nil, &out); err != nil {
		return "", err
	}
	return out.DeliveryStatus, nil
}

type bulkStatusResponse struct {
	envelope
	Data []struct {
		ConsignmentID  flexString `json:"consignment_id"`
		DeliveryStatus string     `json:"delivery_status"`
	} `json:"data"`
}

func (c *Client) BulkStatus(ctx context.Context, consignmentIDs []string) (map[string]string, error) {
	statuses := make(map[string]string, len(consignmentIDs))
	if len(consignmentIDs) == 0 {
		return statuses, nil
	}

	var out bulkStatusResponse
	body := map[string]string{"consignment_id": strings.Join(consignmentIDs, ",")}
	if err := c.call(ctx, http.MethodPost, "/bulk_status_by_cid", body, &out); err != nil {
		return nil, err
	}
	for _, d := range out.Data {
		if d.ConsignmentID != "" && d.DeliveryStatus != "" {
			statuses[string(d.ConsignmentID)] = d.DeliveryStatus
		}
	}
	return statuses, nil
}

func (c *Client) Cancel(ctx context.Context, consignmentID, reason string) error {
	id, err := strconv.ParseInt(consignmentID, 10, 64)
	var cid interface{} = consignmentID
	if err == nil {
		cid = id
	}
	var out envelope
	return c.call(ctx, http.MethodPost, "/cancel_order", map[string]interface{}{
		"consignment_id": cid,
		"reason":         reason,
	}, &out)
}

type deliveryChargeResponse struct {
	envelope
	DeliveryFee float64 `json:"delivery_fee"`
	CODFee      float64 `json:"cod_fee"`
	TotalFee    float64 `json:"total_fee"`
}

// DeliveryCharge 返回总费用（运费+代收手续费）
func (c *Client) DeliveryCharge(ctx context.Context, req courier.DeliveryChargeRequest) (float64, error) {
	weight := req.Weight
	if weight <= 0 {
		weight = courier.WeightPerBookKg
	}
	var out deliveryChargeResponse
	err := c.call(ctx, http.MethodPost, "/get_delivery_charge", map[string]interface{}{
		"recipient_city": req.District,
		"cod_amount":     req.COD,
		"weight":         weight,
	}, &out)
	if err != nil {
		return 0, err
	}
	if out.TotalFee == 0 {
		return out.DeliveryFee + out.CODFee, nil
	}
	return out.TotalFee, nil
}
