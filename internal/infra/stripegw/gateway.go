package stripegw

import (
	"math"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Gateway wraps every call the payment flow makes against Stripe. Handlers
// depend on this interface so tests can swap in a fake and so stripe-go types
// never leak past this package.
type Gateway interface {
	CreateCustomer(email, firstName, lastName string, metadata map[string]string) (string, error)
	CreatePaymentIntent(params IntentParams) (*Intent, error)
	GetPaymentIntent(id string) (*Intent, error)
	CreateSubscription(params SubscriptionParams) (*Subscription, error)
}

type IntentParams struct {
	CustomerID string
	Amount     float64 // major units
	Metadata   map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       float64
	CustomerID   string
	Metadata     map[string]string
}

type SubscriptionParams struct {
	CustomerID      string
	PaymentMethodID string
	Amount          float64 // recurring amount per interval, major units
	Interval        string  // month | year
	IntervalCount   int64
	Metadata        map[string]string
}

type Subscription struct {
	ID     string
	Status string
}

// StripeGateway is the live implementation. It holds its own client.API so
// callers never mutate the package-global stripe.Key.
type StripeGateway struct {
	api       *client.API
	productID string
}

func New(secretKey, productID string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, productID: productID}
}

func (g *StripeGateway) CreateCustomer(email, firstName, lastName string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(firstName + " " + lastName),
	}
	if len(metadata) > 0 {
		params.Metadata = metadata
	}

	cus, err := g.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return cus.ID, nil
}

func (g *StripeGateway) CreatePaymentIntent(p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(p.Amount)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Customer: stripe.String(p.CustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if len(p.Metadata) > 0 {
		params.Metadata = p.Metadata
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) GetPaymentIntent(id string) (*Intent, error) {
	pi, err := g.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return intentFromStripe(pi), nil
}

// CreateSubscription builds the recurring price inline against the configured
// product, so pricing options never need a pre-provisioned Stripe price.
func (g *StripeGateway) CreateSubscription(p SubscriptionParams) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer:             stripe.String(p.CustomerID),
		DefaultPaymentMethod: stripe.String(p.PaymentMethodID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				PriceData: &stripe.SubscriptionItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					Product:    stripe.String(g.productID),
					UnitAmount: stripe.Int64(toCents(p.Amount)),
					Recurring: &stripe.SubscriptionItemPriceDataRecurringParams{
						Interval:      stripe.String(p.Interval),
						IntervalCount: stripe.Int64(p.IntervalCount),
					},
				},
			},
		},
	}
	if len(p.Metadata) > 0 {
		params.Metadata = p.Metadata
	}

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return &Subscription{ID: sub.ID, Status: string(sub.Status)}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       float64(pi.Amount) / 100.0,
		Metadata:     pi.Metadata,
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	return out
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
