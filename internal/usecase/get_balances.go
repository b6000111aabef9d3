package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"
)

type inventoryResponse struct {
	Body []struct {
		InventoryResponse []struct {
			Cash []cashEntry `json:"Cash"`
		} `json:"InventoryResponse"`
	} `json:"Body"`
}

const (
	cashTypeDispensable = "3" // changeable, can be paid back out
	cashTypeStacker     = "4" // total held in the stacker
)

// banknoteThresholdSatang: 20 THB and up are notes, below are coins.
var banknoteThresholdSatang = decimal.NewFromInt(2000)

// BalanceItem is one denomination row of the normalized inventory report.
type BalanceItem struct {
	Denom     string  `json:"denom"`
	Value     float64 `json:"value"`
	Qty       int64   `json:"qty"`
	InStacker int64   `json:"inStacker"`
	Type      int     `json:"type"` // 1 banknote, 2 coin
}

type GetBalances struct {
	gw UpstreamGateway
}

func NewGetBalances(gw UpstreamGateway) *GetBalances {
	return &GetBalances{gw: gw}
}

// Execute fetches /inventory and folds it into per-denomination rows:
// type-"3" Cash counts become qty, type-"4" counts become inStacker,
// summed per face value across both lists. Upstream failures are surfaced
// to the caller via the result outcome.
func (uc *GetBalances) Execute(ctx context.Context) ([]BalanceItem, UpstreamResult) {
	res := uc.gw.Call(ctx, http.MethodGet, "/inventory", nil)
	if res.Outcome != OutcomeSuccess {
		return nil, res
	}
	return mapInventory(res.Body), res
}

func mapInventory(body []byte) []BalanceItem {
	var raw inventoryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	if len(raw.Body) == 0 || len(raw.Body[0].InventoryResponse) == 0 {
		return nil
	}

	rows := map[string]*BalanceItem{}
	for _, cash := range raw.Body[0].InventoryResponse[0].Cash {
		t := string(cash.Type)
		if t != cashTypeDispensable && t != cashTypeStacker {
			continue
		}
		for _, dn := range cash.Denomination {
			if !dn.FV.ok {
				continue
			}
			count := int64(0)
			// inventory reports one count per denomination, first entry
			if len(dn.Piece) > 0 && dn.Piece[0].Value.ok {
				count = dn.Piece[0].Value.n.IntPart()
			}
			key := dn.FV.n.String()
			row, seen := rows[key]
			if !seen {
				baht := dn.FV.n.Div(minorPerMajor)
				kind := 2
				if dn.FV.n.GreaterThanOrEqual(banknoteThresholdSatang) {
					kind = 1
				}
				row = &BalanceItem{
					Denom: baht.StringFixed(2),
					Value: baht.InexactFloat64(),
					Type:  kind,
				}
				rows[key] = row
			}
			if t == cashTypeDispensable {
				row.Qty += count
			} else {
				row.InStacker += count
			}
		}
	}

	items := make([]BalanceItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, *r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	return items
}
