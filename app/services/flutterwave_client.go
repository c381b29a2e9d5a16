package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/models/other"
)

type FlutterwaveClient struct {
	apiClient
	redirectURL string
}

func NewFlutterwaveClient(secretKey, baseURL, redirectURL string) *FlutterwaveClient {
	return &FlutterwaveClient{
		apiClient:   newAPIClient("Flutterwave", secretKey, baseURL),
		redirectURL: redirectURL,
	}
}

func (c *FlutterwaveClient) Name() string { return models.ProviderFlutterwave }

func (c *FlutterwaveClient) call(ctx context.Context, method, path string, payload any, out any) error {
	body, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	var env other.FlutterwaveEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: Flutterwave returned invalid JSON: %v", ErrPaymentProvider, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("%w: Flutterwave: %s", ErrPaymentProvider, env.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: Flutterwave data: %v", ErrPaymentProvider, err)
	}
	return nil
}

func (c *FlutterwaveClient) Initialize(ctx context.Context, order *models.Order, reference string) (*PaymentSession, error) {
	req := other.FlutterwavePaymentRequest{
		TxRef:       reference,
		Amount:      order.Total.StringFixed(2),
		Currency:    currencyNGN,
		RedirectURL: returnURL(c.redirectURL, order.ID),
		Customer: other.FlutterwaveCustomer{
			Email:       order.Email,
			Name:        order.ShippingAddress.FullName,
			PhoneNumber: order.ShippingAddress.Phone,
		},
		Customizations: other.FlutterwaveCustomizations{
			Title:       "TKB Glow",
			Description: "Order #" + order.ShortID(),
		},
		Meta: map[string]string{"order_id": order.ID},
	}

	var data other.FlutterwavePaymentData
	if err := c.call(ctx, http.MethodPost, "/v3/payments", req, &data); err != nil {
		return nil, err
	}
	return &PaymentSession{
		Provider:         models.ProviderFlutterwave,
		Reference:        reference,
		AuthorizationURL: data.Link,
	}, nil
}

// Verify accepts either a numeric transaction id or a tx_ref.
func (c *FlutterwaveClient) Verify(ctx context.Context, reference string) (*VerifiedPayment, error) {
	path := "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	if _, err := strconv.ParseInt(reference, 10, 64); err == nil {
		path = "/v3/transactions/" + reference + "/verify"
	}

	var tx other.FlutterwaveTransaction
	if err := c.call(ctx, http.MethodGet, path, nil, &tx); err != nil {
		return nil, err
	}
	return &VerifiedPayment{
		Provider:      models.ProviderFlutterwave,
		Reference:     tx.TxRef,
		TransactionID: strconv.FormatInt(tx.ID, 10),
		OrderID:       tx.Meta.OrderID,
		Status:        tx.Status,
		Amount:        decimal.NewFromFloat(tx.Amount),
		Currency:      tx.Currency,
		Successful:    tx.Status == "successful",
	}, nil
}

func (c *FlutterwaveClient) Refund(ctx context.Context, order *models.Order) error {
	if order.ProviderTransactionID == "" {
		return fmt.Errorf("%w: no Flutterwave transaction id on order", ErrInvalidInput)
	}
	return c.call(ctx, http.MethodPost, "/v3/transactions/"+url.PathEscape(order.ProviderTransactionID)+"/refund", nil, nil)
}

func (c *FlutterwaveClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/v3/banks/NG", nil, nil)
}

// VerifyFlutterwaveHash compares the verif-hash header with the configured secret hash.
func VerifyFlutterwaveHash(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
