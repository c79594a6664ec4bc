package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"bmapp/pkg/utils"
)

const maxProviderBody = 1 << 20

type RevenueCatConfig struct {
	APIKey    string
	ProjectID string
	BaseURL   string
}

type PurchaseVerification struct {
	TransactionID string
	ProductID     string
	// Raw is the provider response stored on the record.
	Raw json.RawMessage
}

// PurchaseVerifier asks the payment provider whether a store transaction exists.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, transactionID string) (*PurchaseVerification, error)
}

type revenueCatClient struct {
	cfg    RevenueCatConfig
	client *http.Client
}

// NewRevenueCatClient builds a v2 API client. The http client should not carry a
// short timeout; verification happens after the user has already paid.
func NewRevenueCatClient(cfg RevenueCatConfig, client *http.Client) PurchaseVerifier {
	if client == nil {
		client = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &revenueCatClient{cfg: cfg, client: client}
}

type purchaseList struct {
	Items []struct {
		ID                      string `json:"id"`
		StorePurchaseIdentifier string `json:"store_purchase_identifier"`
		ProductID               string `json:"product_id"`
	} `json:"items"`
}

func (r *revenueCatClient) VerifyPurchase(ctx context.Context, transactionID string) (*PurchaseVerification, error) {
	if r.cfg.APIKey == "" || r.cfg.ProjectID == "" || r.cfg.BaseURL == "" {
		return nil, utils.ErrProviderNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v2/projects/%s/purchases?store_purchase_identifier=%s",
		r.cfg.BaseURL, url.PathEscape(r.cfg.ProjectID), url.QueryEscape(transactionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", utils.ErrProviderUnavailable, err)
	}
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var list purchaseList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", utils.ErrProviderUnavailable, err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%w: no purchase found for transaction", utils.ErrPurchaseNotVerified)
	}
	for _, it := range list.Items {
		if it.ID == transactionID || it.StorePurchaseIdentifier == transactionID {
			return &PurchaseVerification{
				TransactionID: transactionID,
				ProductID:     it.ProductID,
				Raw:           json.RawMessage(body),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction id does not match any purchase", utils.ErrPurchaseNotVerified)
}

// statusError classifies a non-2xx reply. Client errors about the lookup itself
// mean the purchase is not verified; credential, rate-limit and server errors
// leave the outcome unknown.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: revenuecat returned %d", utils.ErrProviderUnavailable, code)
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: revenuecat returned %d", utils.ErrPurchaseNotVerified, code)
	default:
		return fmt.Errorf("%w: revenuecat returned %d", utils.ErrProviderUnavailable, code)
	}
}
