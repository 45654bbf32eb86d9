package gateway

import "strings"

const (
	approvedResponse   = "Approved"
	approvedReturnCode = "00"
)

// Callback adalah hasil yang dikirim bank ke okUrl/failUrl.
type Callback struct {
	OrderID        string
	Response       string
	ProcReturnCode string
	TransID        string
	AuthCode       string
	ErrMsg         string
	Fields         Fields
}

// ParseCallback membaca field penting tanpa peduli kapitalisasi nama field.
func ParseCallback(fields Fields) Callback {
	orderID := fields.Get(FieldOrderID)
	if orderID == "" {
		orderID = fields.Get("OrderId")
	}
	return Callback{
		OrderID:        strings.TrimSpace(orderID),
		Response:       fields.Get(FieldResponse),
		ProcReturnCode: fields.Get(FieldProcReturnCode),
		TransID:        fields.Get(FieldTransID),
		AuthCode:       fields.Get(FieldAuthCode),
		ErrMsg:         fields.Get(FieldErrMsg),
		Fields:         fields,
	}
}

func (c Callback) Approved() bool {
	return c.Response == approvedResponse && c.ProcReturnCode == approvedReturnCode
}

// FailureReason untuk dicatat di payment details order yang gagal.
func (c Callback) FailureReason() string {
	if c.ErrMsg != "" {
		return c.ErrMsg
	}
	if c.Response != "" {
		return c.Response + " (" + c.ProcReturnCode + ")"
	}
	return "payment was not approved"
}
