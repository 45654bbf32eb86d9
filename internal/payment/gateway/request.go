package gateway

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ridloal/apparel-store/internal/order/domain"
)

var ErrMissingOrderField = errors.New("order is missing a field required for payment")

// PaymentRequest adalah parameter redirect ke halaman 3D Secure bank.
// Dibuat baru setiap redirect dan tidak disimpan.
type PaymentRequest struct {
	GatewayURL string `json:"gateway_url"`
	Fields     Fields `json:"fields"`
}

// FieldNames mengembalikan nama field terurut untuk render form yang stabil.
// Field hash selalu paling akhir.
func (p *PaymentRequest) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	var hashes []string
	for k := range p.Fields {
		if isHashField(k) {
			hashes = append(hashes, k)
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	sort.Strings(hashes)
	return append(names, hashes...)
}

// BuildPaymentRequest menyusun field untuk order dan menandatanganinya.
func (s *Signer) BuildPaymentRequest(order *domain.Order) (*PaymentRequest, error) {
	if order == nil || order.OrderID == "" {
		return nil, fmt.Errorf("%w: order id", ErrMissingOrderField)
	}
	if !order.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total amount", ErrMissingOrderField)
	}

	fields := Fields{
		FieldClientID:    s.cfg.ClientID,
		FieldStoreType:   s.cfg.StoreType,
		FieldAmount:      order.TotalAmount.StringFixed(2),
		FieldOrderID:     order.OrderID,
		FieldOkURL:       s.cfg.OkURL,
		FieldFailURL:     s.cfg.FailURL,
		FieldCurrency:    s.cfg.Currency,
		FieldLang:        s.cfg.Lang,
		FieldTranType:    s.cfg.TranType,
		FieldRandom:      s.nonce(),
		FieldInstallment: "",
		FieldEncoding:    s.cfg.Encoding,
	}
	fields[FieldHash] = s.Hash(fields)

	return &PaymentRequest{GatewayURL: s.cfg.GatewayURL, Fields: fields}, nil
}
