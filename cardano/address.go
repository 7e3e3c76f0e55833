package cardano

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	cardanosdk "github.com/echovl/cardano-go"
	"github.com/echovl/cardano-go/crypto"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// UTXORef identifies one unspent output and the address holding it.
type UTXORef struct {
	TxHash  string `json:"txHash"`
	Index   uint64 `json:"index"`
	Address string `json:"address"`
}

// Key returns the reservation key, "txhash#index".
func (r UTXORef) Key() string {
	return fmt.Sprintf("%s#%d", r.TxHash, r.Index)
}

// IsValidAddress check address
func IsValidAddress(addr string) bool {
	_, err := cardanosdk.NewAddress(addr)
	return err == nil
}

// PaymentScriptHash returns the script hash of a script-locked
// address's payment credential, or ErrNotScriptAddress for a key-locked
// one.
func PaymentScriptHash(addr string) ([]byte, error) {
	parsed, err := cardanosdk.NewAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotScriptAddress, err)
	}
	if parsed.Payment.Type != cardanosdk.ScriptCredential {
		return nil, fmt.Errorf("%w: %v", ErrNotScriptAddress, addr)
	}
	return []byte(parsed.Payment.ScriptHash), nil
}

// PublicKeyToAddress derives the enterprise address of a hex encoded
// ed25519 public key.
func PublicKeyToAddress(pubKeyHex string, network cardanosdk.Network) (string, error) {
	pubStr, err := bech32.EncodeFromBase256("addr_vk", common.FromHex(pubKeyHex))
	if err != nil {
		return "", err
	}
	pubKey, err := crypto.NewPubKey(pubStr)
	if err != nil {
		return "", err
	}
	payment, err := cardanosdk.NewKeyCredential(pubKey)
	if err != nil {
		return "", err
	}
	enterpriseAddr, err := cardanosdk.NewEnterpriseAddress(network, payment)
	if err != nil {
		return "", err
	}
	return enterpriseAddr.String(), nil
}

// VerifyPubKeyAddress verify address and public key are matching
func VerifyPubKeyAddress(address, pubKeyHex string, network cardanosdk.Network) error {
	addr, err := PublicKeyToAddress(pubKeyHex, network)
	if err != nil {
		return err
	}
	if addr == address {
		return nil
	}
	return errors.New(fmt.Sprint("addr not match ", "derivedAddr ", addr, " Addr ", address))
}
