// Package pixcode builds and parses the EMV merchant-presented BR Code
// carried by PIX charges. Everything here is pure and deterministic: the
// encoded string is the durable artifact, QR bitmaps are derived on demand.
package pixcode

import (
	"errors"
	"fmt"
	"strings"
)

// EMV field ids used by the PIX merchant-presented grammar.
const (
	idPayloadFormat      = "00"
	idPointOfInitiation  = "01"
	idMerchantAccount    = "26"
	idMerchantCategory   = "52"
	idCurrency           = "53"
	idAmount             = "54"
	idCountryCode        = "58"
	idMerchantName       = "59"
	idMerchantCity       = "60"
	idAdditionalData     = "62"
	idCRC                = "63"
	maiGUI               = "00"
	maiPixKey            = "01"
	maiDescription       = "02"
	additionalDataTxID   = "05"
	pixGUI               = "br.gov.bcb.pix"
	currencyBRL          = "986"
	countryBR            = "BR"
	merchantCategoryNone = "0000"
)

const (
	maxMerchantNameLen = 25
	maxMerchantCityLen = 15
	maxDescriptionLen  = 72
	minTxIDLen         = 26
	maxTxIDLen         = 35
)

// ErrInvalidField reports charge parameters that cannot fit the fixed-length
// EMV fields.
var ErrInvalidField = errors.New("field does not fit pix payload constraints")

// Params are the inputs for one BR Code. AmountDecimal must already carry
// exactly the external form, e.g. "10.50".
type Params struct {
	MerchantName  string
	MerchantCity  string
	PixKey        string
	AmountDecimal string
	TxID          string
	Description   string
}

// Encode renders the TLV payload including the trailing CRC16 field.
// Identical inputs always yield byte-identical output.
func Encode(p Params) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	mai := tlv(maiGUI, pixGUI) + tlv(maiPixKey, p.PixKey)
	if p.Description != "" {
		mai += tlv(maiDescription, p.Description)
	}

	var b strings.Builder
	b.WriteString(tlv(idPayloadFormat, "01"))
	b.WriteString(tlv(idPointOfInitiation, "12"))
	b.WriteString(tlv(idMerchantAccount, mai))
	b.WriteString(tlv(idMerchantCategory, merchantCategoryNone))
	b.WriteString(tlv(idCurrency, currencyBRL))
	b.WriteString(tlv(idAmount, p.AmountDecimal))
	b.WriteString(tlv(idCountryCode, countryBR))
	b.WriteString(tlv(idMerchantName, p.MerchantName))
	b.WriteString(tlv(idMerchantCity, p.MerchantCity))
	b.WriteString(tlv(idAdditionalData, tlv(additionalDataTxID, p.TxID)))

	// The CRC is computed over the payload including its own tag and length.
	b.WriteString(idCRC + "04")
	payload := b.String()
	return fmt.Sprintf("%s%04X", payload, ChecksumCRC16(payload)), nil
}

func (p Params) validate() error {
	if p.MerchantName == "" || len(p.MerchantName) > maxMerchantNameLen {
		return fmt.Errorf("%w: merchant name", ErrInvalidField)
	}
	if p.MerchantCity == "" || len(p.MerchantCity) > maxMerchantCityLen {
		return fmt.Errorf("%w: merchant city", ErrInvalidField)
	}
	if p.PixKey == "" || len(p.PixKey) > 77 {
		return fmt.Errorf("%w: pix key", ErrInvalidField)
	}
	if len(p.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description", ErrInvalidField)
	}
	if len(p.TxID) < minTxIDLen || len(p.TxID) > maxTxIDLen {
		return fmt.Errorf("%w: txid", ErrInvalidField)
	}
	// the merchant account template itself is length-prefixed with two digits
	mai := len(pixGUI) + 4 + len(p.PixKey) + 4
	if p.Description != "" {
		mai += len(p.Description) + 4
	}
	if mai > 99 {
		return fmt.Errorf("%w: pix key and description exceed merchant account capacity", ErrInvalidField)
	}
	if !validAmount(p.AmountDecimal) {
		return fmt.Errorf("%w: amount", ErrInvalidField)
	}
	return nil
}

// validAmount accepts strictly positive values with exactly two decimals.
func validAmount(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || len(frac) != 2 || whole == "" {
		return false
	}
	nonzero := false
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return false
		}
		if r != '0' {
			nonzero = true
		}
	}
	return nonzero
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// ChecksumCRC16 computes CRC16/CCITT-FALSE (poly 0x1021, init 0xFFFF) over s.
func ChecksumCRC16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
