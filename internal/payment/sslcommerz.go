// Package payment talks to the SSLCommerz hosted checkout.
package payment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"repairhub/internal/models"
)

const (
	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"

	tranDateLayout = "2006-01-02 15:04:05"
)

var (
	ErrSessionRejected = errors.New("payment gateway rejected the session")
	ErrInvalidPayment  = errors.New("payment is not valid")
)

// Customer is the billing party sent with a session, taken from the user's
// default address.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	Region  string
}

// SessionRequest carries what the gateway needs to open a checkout page.
type SessionRequest struct {
	OrderID      string
	UserID       string
	Amount       decimal.Decimal
	Category     string
	CategoryType string
	ProductName  string
	ShipName     string
	ShipAddress  string
	Customer     Customer
}

// Result is a validated transaction.
type Result struct {
	Status     string
	TranID     string
	Amount     models.Amount
	CardType   string
	BankTranID string
	CardIssuer string
	TranDate   time.Time
	OrderID    string
	UserID     string
}

// Payment converts the result to the record appended to the order.
func (r Result) Payment() models.Payment {
	return models.Payment{
		TranID:     r.TranID,
		Amount:     r.Amount,
		CardType:   r.CardType,
		BankTranID: r.BankTranID,
		CardIssuer: r.CardIssuer,
		TranDate:   r.TranDate,
	}
}

// Gateway is the SSLCommerz surface the order flow uses.
type Gateway interface {
	InitSession(ctx context.Context, req SessionRequest) (string, error)
	Validate(ctx context.Context, valID string) (*Result, error)
}

type SSLCommerz struct {
	storeID     string
	storePasswd string
	baseURL     string
	callbackURL string
	client      *http.Client
	newTranID   func() string
}

// NewSSLCommerz builds a client for baseURL. callbackURL is this service's
// public URL; the gateway redirects to its /api/payments routes.
func NewSSLCommerz(storeID, storePasswd, baseURL, callbackURL string, client *http.Client) *SSLCommerz {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SSLCommerz{
		storeID:     storeID,
		storePasswd: storePasswd,
		baseURL:     strings.TrimRight(baseURL, "/"),
		callbackURL: strings.TrimRight(callbackURL, "/"),
		client:      client,
		newTranID:   newTranID,
	}
}

func newTranID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

func (s *SSLCommerz) sessionFields(req SessionRequest) [][2]string {
	cus := req.Customer
	cusAddress := strings.Trim(cus.Address, ", ")
	return [][2]string{
		{"store_id", s.storeID},
		{"store_passwd", s.storePasswd},
		{"total_amount", req.Amount.StringFixed(2)},
		{"currency", "BDT"},
		{"tran_id", s.newTranID()},
		{"multi_card_name", "mobilebank"},
		{"success_url", s.callbackURL + "/api/payments/paymentSuccess"},
		{"fail_url", s.callbackURL + "/api/payments/paymentFail"},
		{"cancel_url", s.callbackURL + "/api/payments/paymentCancel"},
		{"shipping_method", req.Category},
		{"product_name", req.ProductName},
		{"product_category", req.CategoryType},
		{"product_profile", "general"},
		{"cus_name", cus.Name},
		{"cus_email", cus.Email},
		{"cus_add1", cusAddress},
		{"cus_add2", cusAddress},
		{"cus_city", cus.City},
		{"cus_state", cus.Region},
		{"cus_postcode", "1000"},
		{"cus_country", "Bangladesh"},
		{"cus_phone", cus.Phone},
		{"cus_fax", cus.Phone},
		{"ship_name", req.ShipName},
		{"ship_add1", req.ShipAddress},
		{"ship_add2", req.ShipAddress},
		{"ship_city", "Dhaka"},
		{"ship_state", "Dhaka"},
		{"ship_postcode", "1000"},
		{"ship_country", "Bangladesh"},
		{"value_a", req.OrderID},
		{"value_b", req.UserID},
	}
}

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitSession opens a hosted checkout and returns its URL.
func (s *SSLCommerz) InitSession(ctx context.Context, req SessionRequest) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, kv := range s.sessionFields(req) {
		if err := form.WriteField(kv[0], kv[1]); err != nil {
			return "", errors.Wrap(err, "build payment form")
		}
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, "build payment form")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+initPath, &body)
	if err != nil {
		return "", errors.Wrap(err, "build payment request")
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	var out sessionResponse
	if err := s.doJSON(httpReq, &out); err != nil {
		return "", err
	}
	if out.Status != "SUCCESS" || out.GatewayPageURL == "" {
		return "", errors.Wrapf(ErrSessionRejected, "status %q: %s", out.Status, out.FailedReason)
	}
	return out.GatewayPageURL, nil
}

type validationResponse struct {
	Status     string `json:"status"`
	TranID     string `json:"tran_id"`
	Amount     string `json:"amount"`
	CardType   string `json:"card_type"`
	BankTranID string `json:"bank_tran_id"`
	CardIssuer string `json:"card_issuer"`
	TranDate   string `json:"tran_date"`
	ValueA     string `json:"value_a"`
	ValueB     string `json:"value_b"`
}

// Validate asks the gateway whether valID is a completed payment. Only
// VALID and VALIDATED results are returned without error.
func (s *SSLCommerz) Validate(ctx context.Context, valID string) (*Result, error) {
	if strings.TrimSpace(valID) == "" {
		return nil, errors.Wrap(ErrInvalidPayment, "missing val_id")
	}
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", s.storeID)
	q.Set("store_passwd", s.storePasswd)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+validatePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build validation request")
	}

	var out validationResponse
	if err := s.doJSON(httpReq, &out); err != nil {
		return nil, err
	}
	if out.Status != "VALID" && out.Status != "VALIDATED" {
		return nil, errors.Wrapf(ErrInvalidPayment, "status %q", out.Status)
	}

	amount, err := models.ParseAmount(out.Amount)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPayment, err.Error())
	}
	result := &Result{
		Status:     out.Status,
		TranID:     out.TranID,
		Amount:     amount,
		CardType:   out.CardType,
		BankTranID: out.BankTranID,
		CardIssuer: out.CardIssuer,
		OrderID:    out.ValueA,
		UserID:     out.ValueB,
	}
	if out.TranDate != "" {
		if t, err := time.ParseInLocation(tranDateLayout, out.TranDate, time.UTC); err == nil {
			result.TranDate = t
		}
	}
	return result, nil
}

func (s *SSLCommerz) doJSON(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "payment gateway request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read payment gateway response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode payment gateway response")
	}
	return nil
}
