package payments

import (
	"encoding/json"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"
)

// Merchant data is an opaque JSON document owned by the merchant. Each
// operation decodes only the view it needs and trusts nothing beyond the
// fields it reads: ChainCheckout reads top-level item-id -> unit-price
// entries, Subscribe reads the "packages" array.

// Package is one entry of a merchant's subscription catalog.
type Package struct {
	Name     string `json:"name"`
	Price    uint64 `json:"price"`
	Duration int64  `json:"duration"`
	Trial    *int64 `json:"trial,omitempty"`
}

// TrialDuration returns the trial window, which is zero when the merchant
// defined none.
func (p *Package) TrialDuration() int64 {
	if p.Trial == nil {
		return 0
	}
	return *p.Trial
}

type itemCatalog struct {
	entries map[string]json.RawMessage
}

func parseItemCatalog(merchantData string) (*itemCatalog, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(merchantData), &entries); err != nil {
		return nil, errors.Wrap(ErrInvalidOrderItems, "merchant catalog is not a JSON object")
	}
	return &itemCatalog{entries: entries}, nil
}

// Price resolves one line item's unit price. Ids absent from the catalog,
// or present with a non-numeric value, are invalid.
func (c *itemCatalog) Price(itemID string) (uint64, error) {
	raw, ok := c.entries[itemID]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidOrderItems, "item %q not in catalog", itemID)
	}

	var price uint64
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, errors.Wrapf(ErrInvalidOrderItems, "item %q has no numeric price", itemID)
	}
	return price, nil
}

func parsePackages(merchantData string) ([]Package, error) {
	var catalog struct {
		Packages []Package `json:"packages"`
	}
	if err := json.Unmarshal([]byte(merchantData), &catalog); err != nil {
		return nil, errors.Wrap(ErrNoPackagesDefined, "merchant catalog is not valid JSON")
	}
	if len(catalog.Packages) == 0 {
		return nil, ErrNoPackagesDefined
	}
	return catalog.Packages, nil
}

// findPackage selects a package by name. Duplicate names are legal in a
// merchant catalog; the first match wins.
func findPackage(packages []Package, name string) (*Package, error) {
	for i := range packages {
		if packages[i].Name == name {
			return &packages[i], nil
		}
	}
	return nil, errors.Wrapf(ErrPackageNotFound, "package %q", name)
}

// splitSubscriptionName splits the composite "subscriptionId:packageName".
func splitSubscriptionName(name string) (subscriptionID, packageName string, err error) {
	subscriptionID, packageName, found := strings.Cut(name, ":")
	if !found || len(subscriptionID) == 0 || len(packageName) == 0 {
		return "", "", errors.Wrapf(ErrMalformedInstruction, "subscription name %q", name)
	}
	return subscriptionID, packageName, nil
}

// jsonFragment embeds caller-supplied opaque data into a JSON document,
// quoting it when it is not itself valid JSON.
func jsonFragment(data *string) json.RawMessage {
	if data == nil {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(*data)) {
		return json.RawMessage(*data)
	}
	quoted, _ := json.Marshal(*data)
	return quoted
}

// newOrderData builds the durable receipt persisted on a chain checkout
// order: the caller's context under "initial" and the resolved items under
// "paid", in the caller's original item order.
func newOrderData(initial *string, orderItems *linkedhashmap.Map) (string, error) {
	paid, err := orderItems.ToJSON()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize order items")
	}

	doc := struct {
		Initial json.RawMessage `json:"initial"`
		Paid    json.RawMessage `json:"paid"`
	}{
		Initial: jsonFragment(initial),
		Paid:    paid,
	}

	marshalled, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize order data")
	}
	return string(marshalled), nil
}

// subscriptionData pins the resolved package at subscribe time so later
// renewals and cancellations do not drift when the merchant edits the
// catalog.
type subscriptionData struct {
	Initial json.RawMessage `json:"initial"`
	Package Package         `json:"package"`
}

func newSubscriptionData(initial *string, pkg *Package) (string, error) {
	doc := subscriptionData{
		Initial: jsonFragment(initial),
		Package: *pkg,
	}

	marshalled, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize subscription data")
	}
	return string(marshalled), nil
}

func parseSubscriptionData(data string) (*subscriptionData, error) {
	var doc subscriptionData
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, errors.Wrap(ErrCorruptAccountData, "subscription data is not valid JSON")
	}
	return &doc, nil
}

// orderSubscriptionLink extracts the subscription address an order's data
// references, or empty when it references none.
func orderSubscriptionLink(orderData string) string {
	var doc struct {
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal([]byte(orderData), &doc); err != nil {
		return ""
	}
	return doc.Subscription
}
