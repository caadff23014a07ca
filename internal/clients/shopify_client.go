package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/logger"
)

const draftOrderCreateMutation = `
mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder {
      id
      name
    }
    userErrors {
      field
      message
    }
  }
}`

const draftOrderCompleteMutation = `
mutation draftOrderComplete($id: ID!, $paymentPending: Boolean) {
  draftOrderComplete(id: $id, paymentPending: $paymentPending) {
    draftOrder {
      order {
        id
        name
      }
    }
    userErrors {
      field
      message
    }
  }
}`

// ShopifyClient talks to the Shopify Admin GraphQL API. Each call is a
// single attempt bounded by the HTTP client timeout; the sync
// orchestrator decides what a failure means.
type ShopifyClient struct {
	apiVersion string
	httpClient *http.Client
	logger     logger.Logger
}

// NewShopifyClient creates a client for the given admin API version.
func NewShopifyClient(apiVersion string, timeout time.Duration, logger logger.Logger) *ShopifyClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &ShopifyClient{
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// LineItemInput is one draft-order line. VariantID is omitted entirely
// when empty; Shopify rejects a null variant reference.
type LineItemInput struct {
	VariantID         string `json:"variantId,omitempty"`
	Title             string `json:"title,omitempty"`
	OriginalUnitPrice string `json:"originalUnitPrice,omitempty"`
	Quantity          int    `json:"quantity"`
}

// AddressInput is a Shopify mailing address.
type AddressInput struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Address1     string `json:"address1"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	ProvinceCode string `json:"provinceCode"`
	CountryCode  string `json:"countryCode"`
	Phone        string `json:"phone"`
}

// DraftOrderInput is the payload for draftOrderCreate.
type DraftOrderInput struct {
	LineItems       []LineItemInput `json:"lineItems"`
	ShippingAddress AddressInput    `json:"shippingAddress"`
	BillingAddress  AddressInput    `json:"billingAddress"`
	Email           string          `json:"email"`
	Note            string          `json:"note,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
}

// DraftOrder is the created draft, a precursor to a real order.
type DraftOrder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShopifyOrder is the completed order as Shopify reports it.
type ShopifyOrder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserError is a field-level validation error from the admin API.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// CreateDraftOrder issues draftOrderCreate and returns the draft, or an
// error when the call fails or yields no draft.
func (c *ShopifyClient) CreateDraftOrder(ctx context.Context, shopDomain, accessToken string, input DraftOrderInput) (*DraftOrder, error) {
	variables := map[string]interface{}{"input": input}

	var result struct {
		DraftOrderCreate struct {
			DraftOrder *DraftOrder `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}

	if err := c.graphql(ctx, shopDomain, accessToken, draftOrderCreateMutation, variables, &result); err != nil {
		return nil, err
	}

	if result.DraftOrderCreate.DraftOrder == nil {
		return nil, apperrors.NewUpstreamSyncError(
			fmt.Sprintf("draft order not created: %s", joinUserErrors(result.DraftOrderCreate.UserErrors)))
	}

	return result.DraftOrderCreate.DraftOrder, nil
}

// CompleteDraftOrder completes a draft as payment-pending (COD) and
// returns the resulting order, or an error when none materializes.
func (c *ShopifyClient) CompleteDraftOrder(ctx context.Context, shopDomain, accessToken, draftOrderID string) (*ShopifyOrder, error) {
	variables := map[string]interface{}{
		"id":             draftOrderID,
		"paymentPending": true,
	}

	var result struct {
		DraftOrderComplete struct {
			DraftOrder *struct {
				Order *ShopifyOrder `json:"order"`
			} `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderComplete"`
	}

	if err := c.graphql(ctx, shopDomain, accessToken, draftOrderCompleteMutation, variables, &result); err != nil {
		return nil, err
	}

	draft := result.DraftOrderComplete.DraftOrder
	if draft == nil || draft.Order == nil {
		return nil, apperrors.NewUpstreamSyncError(
			fmt.Sprintf("draft order not completed: %s", joinUserErrors(result.DraftOrderComplete.UserErrors)))
	}

	return draft.Order, nil
}

// graphql posts one GraphQL request to the shop's admin endpoint and
// decodes the data payload into out.
func (c *ShopifyClient) graphql(ctx context.Context, shopDomain, accessToken, query string, variables map[string]interface{}, out interface{}) error {
	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, c.apiVersion)

	reqBody, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return apperrors.NewTimeoutError("admin API request timed out")
		}
		return apperrors.NewTemporaryError(fmt.Sprintf("failed to reach admin API: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
			return apperrors.NewTimeoutError("admin API request timed out")
		}
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusInternalServerError {
			return apperrors.NewTemporaryError(fmt.Sprintf("admin API error: %d", resp.StatusCode))
		}
		return apperrors.NewUpstreamSyncError(fmt.Sprintf("admin API returned status %d", resp.StatusCode))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to parse response: %v", err))
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return apperrors.NewUpstreamSyncError(fmt.Sprintf("admin API errors: %s", strings.Join(messages, "; ")))
	}

	if len(envelope.Data) == 0 {
		return apperrors.NewUpstreamSyncError("admin API returned no data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to parse response data: %v", err))
	}

	return nil
}

func joinUserErrors(errs []UserError) string {
	if len(errs) == 0 {
		return "no user errors reported"
	}

	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), e.Message))
		} else {
			parts = append(parts, e.Message)
		}
	}

	return strings.Join(parts, "; ")
}
