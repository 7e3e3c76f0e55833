package txapi

import (
	"fmt"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/assembler"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// ScriptSpendArgs is the wire form of a script-locked input spend.
type ScriptSpendArgs struct {
	TxHash  string `json:"txHash"`
	Index   uint64 `json:"index"`
	Address string `json:"address"`

	ScriptVersion uint8  `json:"scriptVersion"`
	ScriptHex     string `json:"script"`

	RedeemerConstructor uint64   `json:"redeemerConstructor"`
	RedeemerFields      []string `json:"redeemerFields,omitempty"` // hex encoded
}

// ToScriptSpend converts wire args into the assembler form.
func (args *ScriptSpendArgs) ToScriptSpend() (*assembler.ScriptSpend, error) {
	if args == nil {
		return nil, nil
	}
	if !common.IsHexHash(args.TxHash) {
		return nil, fmt.Errorf("invalid spend txHash %q", args.TxHash)
	}
	if !cardano.IsValidAddress(args.Address) {
		return nil, fmt.Errorf("invalid spend address %q", args.Address)
	}
	script, err := common.HexToBytes(args.ScriptHex)
	if err != nil {
		return nil, fmt.Errorf("invalid script hex: %w", err)
	}
	version := cardano.ScriptVersion(args.ScriptVersion)
	switch version {
	case cardano.ScriptV1, cardano.ScriptV2:
	default:
		return nil, fmt.Errorf("unsupported script version %d", args.ScriptVersion)
	}
	fields := make([][]byte, 0, len(args.RedeemerFields))
	for i, f := range args.RedeemerFields {
		b, err := common.HexToBytes(f)
		if err != nil {
			return nil, fmt.Errorf("invalid redeemer field %d: %w", i, err)
		}
		fields = append(fields, b)
	}
	return &assembler.ScriptSpend{
		Input: cardano.UTXORef{
			TxHash:  args.TxHash,
			Index:   args.Index,
			Address: args.Address,
		},
		Script: &cardano.ScriptRef{
			Version: version,
			Script:  script,
		},
		Redeemer: &cardano.RedeemerData{
			Constructor: args.RedeemerConstructor,
			Fields:      fields,
		},
	}, nil
}
