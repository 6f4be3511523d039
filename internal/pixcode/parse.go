package pixcode

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMalformedPayload = errors.New("malformed pix payload")
	ErrBadChecksum      = errors.New("pix payload checksum mismatch")
)

// Payload is a decoded BR Code. Nested templates (merchant account
// information, additional data) are flattened into the dedicated fields.
type Payload struct {
	PixKey        string
	Description   string
	AmountDecimal string
	MerchantName  string
	MerchantCity  string
	TxID          string
	CRC           string
}

// Parse re-reads an encoded payload, validating structure and checksum. It is
// the inverse of Encode for every field Encode writes.
func Parse(code string) (*Payload, error) {
	fields, err := parseTLV(code)
	if err != nil {
		return nil, err
	}

	crc, ok := fields[idCRC]
	if !ok || len(crc) != 4 {
		return nil, fmt.Errorf("%w: missing crc", ErrMalformedPayload)
	}
	want := fmt.Sprintf("%04X", ChecksumCRC16(code[:len(code)-4]))
	if crc != want {
		return nil, ErrBadChecksum
	}

	p := &Payload{
		AmountDecimal: fields[idAmount],
		MerchantName:  fields[idMerchantName],
		MerchantCity:  fields[idMerchantCity],
		CRC:           crc,
	}

	if mai, ok := fields[idMerchantAccount]; ok {
		sub, err := parseTLV(mai)
		if err != nil {
			return nil, err
		}
		if sub[maiGUI] != pixGUI {
			return nil, fmt.Errorf("%w: unexpected merchant account GUI", ErrMalformedPayload)
		}
		p.PixKey = sub[maiPixKey]
		p.Description = sub[maiDescription]
	}

	if add, ok := fields[idAdditionalData]; ok {
		sub, err := parseTLV(add)
		if err != nil {
			return nil, err
		}
		p.TxID = sub[additionalDataTxID]
	}

	return p, nil
}

func parseTLV(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: truncated field header at %d", ErrMalformedPayload, i)
		}
		id := s[i : i+2]
		// both length bytes must be ASCII digits; Atoi alone would accept
		// a sign and hand a negative length to the slice below
		if !isDigits(s[i+2 : i+4]) {
			return nil, fmt.Errorf("%w: bad length for field %s", ErrMalformedPayload, id)
		}
		length, err := strconv.Atoi(s[i+2 : i+4])
		if err != nil {
			return nil, fmt.Errorf("%w: bad length for field %s", ErrMalformedPayload, id)
		}
		if i+4+length > len(s) {
			return nil, fmt.Errorf("%w: field %s overruns payload", ErrMalformedPayload, id)
		}
		fields[id] = s[i+4 : i+4+length]
		i += 4 + length
	}
	return fields, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
