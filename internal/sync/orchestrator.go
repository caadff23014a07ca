package sync

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codform/order-api/internal/clients"
	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/circuitbreaker"
	"github.com/codform/order-api/pkg/logger"
)

const (
	variantGIDPrefix = "gid://shopify/ProductVariant/"
	orderGIDPrefix   = "gid://shopify/Order/"

	orderNote = "COD order via CODform widget"
)

var orderTags = []string{"COD", "codform"}

// Outcome is the terminal result of one sync attempt. The orchestrator
// never fails the caller's request; callers switch on the outcome.
type Outcome int

const (
	// OutcomeSynced: the order exists upstream and is linked locally.
	OutcomeSynced Outcome = iota
	// OutcomeFailed: a remote call failed or yielded no usable result.
	// The local order stands untouched.
	OutcomeFailed
	// OutcomeSkipped: the breaker was open, no remote call was made.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Result reports how a sync attempt ended. ShopifyOrderID and
// OrderNumber are set only for OutcomeSynced.
type Result struct {
	Outcome        Outcome
	ShopifyOrderID string
	OrderNumber    string
	Err            error
}

// ShopifyAPI is the slice of the admin client the orchestrator needs.
type ShopifyAPI interface {
	CreateDraftOrder(ctx context.Context, shopDomain, accessToken string, input clients.DraftOrderInput) (*clients.DraftOrder, error)
	CompleteDraftOrder(ctx context.Context, shopDomain, accessToken, draftOrderID string) (*clients.ShopifyOrder, error)
}

// OrderLinker records upstream identifiers on a local order.
type OrderLinker interface {
	LinkShopifyOrder(ctx context.Context, id, shopifyOrderID, shopifyOrderNumber string) (*models.Order, error)
}

// Orchestrator mirrors a locally persisted order into Shopify via the
// two-phase draft-order protocol. Every failure is absorbed: the local
// order is never rolled back and the caller's request never fails here.
type Orchestrator struct {
	shopify ShopifyAPI
	orders  OrderLinker
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  logger.Logger
}

// NewOrchestrator creates an Orchestrator. timeout bounds each remote
// call separately.
func NewOrchestrator(
	shopify ShopifyAPI,
	orders OrderLinker,
	breaker *circuitbreaker.CircuitBreaker,
	timeout time.Duration,
	logger logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		shopify: shopify,
		orders:  orders,
		breaker: breaker,
		timeout: timeout,
		logger:  logger,
	}
}

// Sync attempts the create-draft / complete-draft sequence for order.
func (o *Orchestrator) Sync(ctx context.Context, order *models.Order, store *models.Store) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic during Shopify sync", "orderID", order.ID, "panic", r)
			result = Result{Outcome: OutcomeFailed, Err: fmt.Errorf("sync panic: %v", r)}
		}
	}()

	if !o.breaker.Allow() {
		o.logger.Warn("Shopify sync skipped, circuit open",
			"orderID", order.ID,
			"shop", store.ShopDomain)
		return Result{Outcome: OutcomeSkipped}
	}

	input := BuildDraftOrderInput(order)

	draftCtx, cancel := context.WithTimeout(ctx, o.timeout)
	draft, err := o.shopify.CreateDraftOrder(draftCtx, store.ShopDomain, store.AccessToken, input)
	cancel()

	if err != nil {
		o.breaker.Failure()
		o.logger.Error("Shopify draft order creation failed",
			"error", err,
			"orderID", order.ID,
			"shop", store.ShopDomain)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	completeCtx, cancel := context.WithTimeout(ctx, o.timeout)
	shopifyOrder, err := o.shopify.CompleteDraftOrder(completeCtx, store.ShopDomain, store.AccessToken, draft.ID)
	cancel()

	if err != nil {
		o.breaker.Failure()
		o.logger.Error("Shopify draft order completion failed",
			"error", err,
			"orderID", order.ID,
			"draftOrderID", draft.ID,
			"shop", store.ShopDomain)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	o.breaker.Success()

	shopifyOrderID := StripOrderGID(shopifyOrder.ID)

	if _, err := o.orders.LinkShopifyOrder(ctx, order.ID, shopifyOrderID, shopifyOrder.Name); err != nil {
		// The order exists upstream but the local link failed. The
		// local order stays pending; report failure so the merchant
		// sees the sync needs attention.
		o.logger.Error("Failed to link Shopify order locally",
			"error", err,
			"orderID", order.ID,
			"shopifyOrderID", shopifyOrderID)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	o.logger.Info("Order synced to Shopify",
		"orderID", order.ID,
		"shopifyOrderID", shopifyOrderID,
		"orderNumber", shopifyOrder.Name)

	return Result{
		Outcome:        OutcomeSynced,
		ShopifyOrderID: shopifyOrderID,
		OrderNumber:    shopifyOrder.Name,
	}
}

// BuildDraftOrderInput maps a local order onto the draftOrderCreate
// payload. The variant reference is omitted entirely when the order has
// no variant id; shipping and billing share the same address.
func BuildDraftOrderInput(order *models.Order) clients.DraftOrderInput {
	item := clients.LineItemInput{
		Quantity: order.Quantity,
	}

	if order.ProductVariantID.Valid && order.ProductVariantID.String != "" {
		item.VariantID = variantGIDPrefix + order.ProductVariantID.String
	} else {
		item.Title = order.ProductTitle
		item.OriginalUnitPrice = strconv.FormatFloat(order.ProductPrice, 'f', 2, 64)
	}

	firstName, lastName := SplitName(order.CustomerName)

	address := clients.AddressInput{
		FirstName:    firstName,
		LastName:     lastName,
		Address1:     order.CustomerAddress,
		City:         order.CustomerCity,
		Zip:          order.CustomerPincode,
		ProvinceCode: order.CustomerState.String,
		CountryCode:  "IN",
		Phone:        order.CustomerPhone,
	}

	return clients.DraftOrderInput{
		LineItems:       []clients.LineItemInput{item},
		ShippingAddress: address,
		BillingAddress:  address,
		Email:           order.CustomerEmail,
		Note:            orderNote,
		Tags:            orderTags,
	}
}

// SplitName splits a full name on whitespace into first name and the
// remaining tokens joined by spaces. A single-token name gets "-" as
// its last name; Shopify requires one.
func SplitName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)

	if len(parts) == 0 {
		return "-", "-"
	}

	firstName = parts[0]
	lastName = strings.Join(parts[1:], " ")
	if lastName == "" {
		lastName = "-"
	}

	return firstName, lastName
}

// StripOrderGID turns "gid://shopify/Order/123456" into "123456".
// Already-bare identifiers pass through unchanged.
func StripOrderGID(gid string) string {
	return strings.TrimPrefix(gid, orderGIDPrefix)
}
