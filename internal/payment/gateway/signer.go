package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ridloal/apparel-store/internal/platform/config"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

// Nama field form bank.
const (
	FieldClientID    = "clientid"
	FieldStoreType   = "storetype"
	FieldAmount      = "amount"
	FieldOrderID     = "oid"
	FieldOkURL       = "okUrl"
	FieldFailURL     = "failUrl"
	FieldCurrency    = "currency"
	FieldLang        = "lang"
	FieldTranType    = "tranType"
	FieldRandom      = "rnd"
	FieldHash        = "hash"
	FieldInstallment = "taksit"
	FieldEncoding    = "encoding"

	FieldResponse       = "Response"
	FieldProcReturnCode = "ProcReturnCode"
	FieldTransID        = "TransId"
	FieldAuthCode       = "AuthCode"
	FieldErrMsg         = "ErrMsg"
)

var (
	ErrMissingStoreKey = errors.New("gateway store key is empty")
	// ErrCallbackAuthentication: hash callback tidak cocok atau tidak ada.
	ErrCallbackAuthentication = errors.New("callback hash verification failed")
)

// Signer menghitung dan memverifikasi hash dengan satu skema untuk seluruh proses.
type Signer struct {
	cfg    config.PaymentConfig
	scheme Scheme
	nonce  func() string
}

func NewSigner(cfg config.PaymentConfig) (*Signer, error) {
	if cfg.StoreKey == "" {
		return nil, ErrMissingStoreKey
	}
	scheme, err := SchemeByName(cfg.HashScheme)
	if err != nil {
		return nil, err
	}
	return &Signer{cfg: cfg, scheme: scheme, nonce: uuid.NewString}, nil
}

func (s *Signer) SchemeName() string {
	return s.scheme.Name()
}

// ComputeHash adalah base64(SHA-512(canonical)). Field hash tidak ikut.
func ComputeHash(scheme Scheme, fields Fields, storeKey string) string {
	return digest(scheme.Canonical(fields.withoutHash(), storeKey))
}

func digest(canonical string) string {
	sum := sha512.Sum512([]byte(canonical))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Hash untuk request keluar.
func (s *Signer) Hash(fields Fields) string {
	return ComputeHash(s.scheme, fields, s.cfg.StoreKey)
}

// CallbackHash adalah hash yang diharapkan dari bank untuk fields callback.
func (s *Signer) CallbackHash(fields Fields) string {
	return digest(s.scheme.CallbackCanonical(fields.withoutHash(), s.cfg.StoreKey))
}

// Verify menghitung ulang hash callback dan membandingkannya (constant-time) dengan
// setiap field hash yang diterima. Cukup satu yang cocok.
// Store key tidak pernah dicatat di log.
func (s *Signer) Verify(fields Fields) error {
	received := fields.receivedHashes()
	if len(received) == 0 {
		logger.Warn("Callback rejected: no hash field", logger.Fields{"oid": fields.Get(FieldOrderID)})
		return fmt.Errorf("%w: hash field missing", ErrCallbackAuthentication)
	}
	expected := []byte(s.CallbackHash(fields))
	matched := 0
	for _, h := range received {
		matched |= subtle.ConstantTimeCompare(expected, []byte(h))
	}
	if matched != 1 {
		logger.Warn("Callback rejected: hash mismatch", logger.Fields{
			"oid":    fields.Get(FieldOrderID),
			"scheme": s.scheme.Name(),
		})
		return ErrCallbackAuthentication
	}
	return nil
}
