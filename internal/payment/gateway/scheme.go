package gateway

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	SchemeSorted     = "sorted"
	SchemePositional = "positional"
)

var ErrUnknownScheme = errors.New("unknown hash scheme")

// Fields adalah parameter flat field -> nilai yang dikirim/diterima dari bank.
type Fields map[string]string

// Get mencari field tanpa memperhatikan huruf besar/kecil.
// Nama persis didahulukan, sisanya dicek dalam urutan nama terurut.
func (f Fields) Get(name string) string {
	if v, ok := f[name]; ok {
		return v
	}
	for _, k := range f.sortedKeys() {
		if strings.EqualFold(k, name) {
			return f[k]
		}
	}
	return ""
}

func (f Fields) sortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// withoutHash menyalin fields tanpa field hash (semua variasi kapitalisasi).
func (f Fields) withoutHash() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if isHashField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// receivedHashes mengembalikan semua nilai hash yang tidak kosong dengan urutan tetap:
// HASH dari bank, lalu hash (biasanya echo dari request), lalu kapitalisasi lain.
func (f Fields) receivedHashes() []string {
	var out []string
	if v := f["HASH"]; v != "" {
		out = append(out, v)
	}
	if v := f[FieldHash]; v != "" {
		out = append(out, v)
	}
	for _, k := range f.sortedKeys() {
		if k == "HASH" || k == FieldHash || !isHashField(k) || f[k] == "" {
			continue
		}
		out = append(out, f[k])
	}
	return out
}

func isHashField(name string) bool {
	return strings.EqualFold(name, FieldHash)
}

// Scheme menyusun string kanonik yang di-hash, termasuk store key.
// Canonical dipakai untuk request keluar, CallbackCanonical untuk callback bank.
// CallbackCanonical wajib mencakup Response dan ProcReturnCode.
type Scheme interface {
	Name() string
	Canonical(fields Fields, storeKey string) string
	CallbackCanonical(fields Fields, storeKey string) string
}

// sortedScheme: key diurutkan (ASCII, case-sensitive), digabung key=value dengan &,
// lalu &storekey=<secret> ditambahkan di akhir tanpa ikut diurutkan.
type sortedScheme struct{}

func (sortedScheme) Name() string { return SchemeSorted }

func (sortedScheme) Canonical(fields Fields, storeKey string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if isHashField(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	b.WriteString("&storekey=")
	b.WriteString(storeKey)
	return b.String()
}

// Semua field callback ikut di-hash, termasuk Response dan ProcReturnCode.
func (s sortedScheme) CallbackCanonical(fields Fields, storeKey string) string {
	return s.Canonical(fields, storeKey)
}

// positionalOrder adalah urutan konkatenasi versi lama gateway.
var positionalOrder = []string{
	FieldClientID, FieldOrderID, FieldAmount, FieldOkURL, FieldFailURL,
	FieldTranType, FieldInstallment, FieldRandom,
}

// positionalScheme: clientid+oid+amount+okUrl+failUrl+tranType+taksit+rnd+storekey.
type positionalScheme struct{}

func (positionalScheme) Name() string { return SchemePositional }

// positionalCallbackOrder mengikuti HASHPARAMS klasik bank:
// clientid:oid:AuthCode:ProcReturnCode:Response:rnd.
var positionalCallbackOrder = []string{
	FieldClientID, FieldOrderID, FieldAuthCode, FieldProcReturnCode, FieldResponse, FieldRandom,
}

func (positionalScheme) Canonical(fields Fields, storeKey string) string {
	return concat(fields, positionalOrder, storeKey)
}

// Hash request keluar tidak berlaku sebagai hash callback karena urutannya berbeda.
func (positionalScheme) CallbackCanonical(fields Fields, storeKey string) string {
	return concat(fields, positionalCallbackOrder, storeKey)
}

func concat(fields Fields, order []string, storeKey string) string {
	var b strings.Builder
	for _, name := range order {
		b.WriteString(fields.Get(name))
	}
	b.WriteString(storeKey)
	return b.String()
}

// SchemeByName memilih skema dari konfigurasi. Kosong berarti sorted.
func SchemeByName(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SchemeSorted:
		return sortedScheme{}, nil
	case SchemePositional:
		return positionalScheme{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}
