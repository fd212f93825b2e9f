package gateway

import (
	"crypto/sha512"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransProvider covers the hosted-checkout code path: instead of charging
// directly, it creates a Snap transaction the browser redirects to, and the
// result arrives later on the webhook.
type MidtransProvider struct {
	client    snap.Client
	serverKey string
}

func NewMidtransProvider(serverKey string, production bool) *MidtransProvider {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &MidtransProvider{client: client, serverKey: serverKey}
}

type Checkout struct {
	Token       string
	RedirectURL string
}

// CreateCheckout opens a Snap transaction for the given order. The order id is
// the subscription id, so the webhook can be correlated back to the record.
func (p *MidtransProvider) CreateCheckout(orderId, itemName string, amount float64, finishURL string) (*Checkout, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: int64(amount),
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		Callbacks:  &snap.Callbacks{Finish: finishURL},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    orderId,
				Price: int64(amount),
				Qty:   1,
				Name:  itemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, err := p.client.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans error: %v", err.GetMessage())
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks the webhook signature:
// SHA512(order_id + status_code + gross_amount + server_key).
func (p *MidtransProvider) VerifySignature(orderId, statusCode, grossAmount, signature string) bool {
	input := orderId + statusCode + grossAmount + p.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return signature == expected
}
