package usecase

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	domain "github.com/realsagiza/POS-X-KF-API/internal/entity"
)

// Upstream payload shapes. Everything is optional: REST_API_CI omits or
// reshapes fields freely, and scalar fields arrive as numbers or numeric
// strings depending on firmware. A shape mismatch is a tier failure, never
// an error.

type cashinResponse struct {
	Response *struct {
		ChangeResponse *struct {
			Body []changeBody `json:"Body"`
		} `json:"change_response"`
	} `json:"response"`
}

type changeBody struct {
	ChangeResponse []changeResponse `json:"ChangeResponse"`
}

type changeResponse struct {
	Cash   []cashEntry   `json:"Cash"`
	Amount []amountEntry `json:"Amount"`
}

type cashEntry struct {
	Type         flexString     `json:"type"`
	Denomination []denomination `json:"Denomination"`
}

type denomination struct {
	FV    scalar       `json:"fv"`
	Piece []pieceEntry `json:"Piece"`
}

type pieceEntry struct {
	Value scalar `json:"value"`
}

type amountEntry struct {
	Value scalar `json:"value"`
}

type socketLatest struct {
	InsertedAmountBaht scalar `json:"inserted_amount_baht"`
	Parsed             *struct {
		InsertedAmountBaht scalar `json:"inserted_amount_baht"`
	} `json:"parsed"`
}

// cashTypeAccepted marks Cash entries that report accepted (inserted)
// cash, as opposed to change or stacker counts.
const cashTypeAccepted = "1"

var minorPerMajor = decimal.NewFromInt(100)

// ResolveCashin extracts the accepted cash amount in baht from a /cashin
// response body. Tier 1 computes sum(fv * sum(Piece.value)) over every
// type-"1" Cash entry across all change-response bodies, in satang. When
// no type-"1" Cash entry exists anywhere, tier 2 takes the first Amount
// list's first value (satang). Either tier divides by 100. A body that
// yields neither is Unresolved; the caller falls back to
// ResolveSocketLatest.
func ResolveCashin(body []byte) domain.CashAmount {
	var raw cashinResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Unresolved()
	}
	if raw.Response == nil || raw.Response.ChangeResponse == nil {
		return domain.Unresolved()
	}
	bodies := raw.Response.ChangeResponse.Body

	if satang, ok := acceptedCashSatang(bodies); ok {
		return domain.ResolvedAmount(satang.Div(minorPerMajor))
	}
	if satang, ok := firstAmountSatang(bodies); ok {
		return domain.ResolvedAmount(satang.Div(minorPerMajor))
	}
	return domain.Unresolved()
}

// acceptedCashSatang is tier 1: the denomination breakdown of every Cash
// entry of the accepted type. Reports ok whenever at least one such entry
// exists, even if its pieces sum to zero.
func acceptedCashSatang(bodies []changeBody) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, b := range bodies {
		for _, cr := range b.ChangeResponse {
			for _, cash := range cr.Cash {
				if string(cash.Type) != cashTypeAccepted {
					continue
				}
				found = true
				for _, dn := range cash.Denomination {
					if !dn.FV.ok {
						continue
					}
					pieces := decimal.Zero
					for _, p := range dn.Piece {
						if p.Value.ok {
							pieces = pieces.Add(p.Value.n)
						}
					}
					total = total.Add(dn.FV.n.Mul(pieces))
				}
			}
		}
	}
	return total, found
}

// firstAmountSatang is tier 2: the first element of the first non-empty
// Amount list, in body order.
func firstAmountSatang(bodies []changeBody) (decimal.Decimal, bool) {
	for _, b := range bodies {
		for _, cr := range b.ChangeResponse {
			if len(cr.Amount) == 0 {
				continue
			}
			if v := cr.Amount[0].Value; v.ok {
				return v.n, true
			}
			return decimal.Zero, false
		}
	}
	return decimal.Zero, false
}

// ResolveSocketLatest reads inserted_amount_baht from a /socket/latest
// snapshot. The value is already in baht; no division. Some firmware
// nests it under "parsed".
func ResolveSocketLatest(body []byte) domain.CashAmount {
	var raw socketLatest
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Unresolved()
	}
	if raw.InsertedAmountBaht.ok {
		return domain.ResolvedAmount(raw.InsertedAmountBaht.n)
	}
	if raw.Parsed != nil && raw.Parsed.InsertedAmountBaht.ok {
		return domain.ResolvedAmount(raw.Parsed.InsertedAmountBaht.n)
	}
	return domain.Unresolved()
}

// scalar is a JSON number or numeric string. Unparseable values leave
// ok=false instead of failing the surrounding document.
type scalar struct {
	n  decimal.Decimal
	ok bool
}

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		if d, err := decimal.NewFromString(str); err == nil {
			s.n, s.ok = d, true
		}
		return nil
	}
	if d, err := decimal.NewFromString(string(b)); err == nil {
		s.n, s.ok = d, true
	}
	return nil
}

// flexString is a JSON string or bare scalar, normalized to its text form
// so `"type": 1` and `"type": "1"` compare equal.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		*f = flexString(str)
		return nil
	}
	*f = flexString(b)
	return nil
}
