package cardano

import (
	"fmt"
	"sort"
	"strings"
)

// AssetID identifies a native asset by minting policy and asset name,
// both hex encoded. The zero AssetID is the ledger's native coin.
type AssetID struct {
	PolicyID  string `json:"policyId"`
	AssetName string `json:"assetName"`
}

// Lovelace is the AssetID of the native coin.
var Lovelace = AssetID{}

// IsLovelace reports whether the asset is the native coin.
func (a AssetID) IsLovelace() bool {
	return a.PolicyID == "" && a.AssetName == ""
}

func (a AssetID) String() string {
	if a.IsLovelace() {
		return "lovelace"
	}
	return a.PolicyID + "." + a.AssetName
}

// ParseAssetID parses "lovelace" or "<policy>.<name>".
func ParseAssetID(s string) (AssetID, error) {
	if s == "lovelace" || s == "" {
		return Lovelace, nil
	}
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || len(parts[0]) != 56 {
		return AssetID{}, fmt.Errorf("invalid asset id '%v'", s)
	}
	return AssetID{PolicyID: parts[0], AssetName: parts[1]}, nil
}

// Value is a multi-asset bag. Quantities are always non-negative;
// subtraction that would go negative is an error, never a wrap.
type Value map[AssetID]uint64

// NewValue returns a Value holding only the given lovelace amount.
func NewValue(lovelace uint64) Value {
	v := make(Value)
	if lovelace > 0 {
		v[Lovelace] = lovelace
	}
	return v
}

// Lovelace returns the native coin quantity.
func (v Value) Lovelace() uint64 {
	return v[Lovelace]
}

// HasAssets reports whether v carries any non-lovelace asset.
func (v Value) HasAssets() bool {
	for id, qty := range v {
		if !id.IsLovelace() && qty > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for id, qty := range v {
		out[id] = qty
	}
	return out
}

// Add adds qty of asset id in place.
func (v Value) Add(id AssetID, qty uint64) {
	if qty == 0 {
		return
	}
	v[id] += qty
}

// AddValue adds every asset of other in place.
func (v Value) AddValue(other Value) {
	for id, qty := range other {
		v.Add(id, qty)
	}
}

// Sub subtracts other from v and returns the remainder. It fails if any
// asset would go negative, leaving v unchanged.
func (v Value) Sub(other Value) (Value, error) {
	out := v.Clone()
	for id, qty := range other {
		have := out[id]
		if have < qty {
			return nil, fmt.Errorf("insufficient %v: have %v want %v", id, have, qty)
		}
		if have == qty {
			delete(out, id)
		} else {
			out[id] = have - qty
		}
	}
	return out, nil
}

// Covers reports whether v holds at least every quantity of other.
func (v Value) Covers(other Value) bool {
	for id, qty := range other {
		if v[id] < qty {
			return false
		}
	}
	return true
}

// Equal reports exact equality, ignoring zero-quantity entries.
func (v Value) Equal(other Value) bool {
	return v.Covers(other) && other.Covers(v)
}

// IsZero reports whether the bag holds nothing.
func (v Value) IsZero() bool {
	for _, qty := range v {
		if qty != 0 {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	ids := make([]AssetID, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%v %v", v[id], id))
	}
	return strings.Join(parts, " + ")
}
