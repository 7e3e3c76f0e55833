// Package params loads and owns the process configuration.
package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

var (
	config     *Config
	configLock sync.RWMutex
	configFile string
)

// Config is the top level configuration.
type Config struct {
	Identifier    string
	Network       string // mainnet / preprod / preview
	Confirmations uint64

	APIServer *APIServerConfig `toml:",omitempty" json:",omitempty"`
	Trade     *TradeConfig
	Signer    *SignerConfig
	Indexer   *IndexerConfig
	Selector  *SelectorConfig `toml:",omitempty" json:",omitempty"`
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int
}

// TradeConfig trading service config
type TradeConfig struct {
	BaseURL string
	Timeout int `toml:",omitempty" json:",omitempty"` // seconds
}

// SignerConfig wallet signer config
type SignerConfig struct {
	WalletURL          string `toml:",omitempty" json:",omitempty"`
	Timeout            int    `toml:",omitempty" json:",omitempty"` // seconds
	SignWithPrivateKey bool   `toml:",omitempty" json:",omitempty"`
	PrivateKeyEnv      string `toml:",omitempty" json:",omitempty"` // env var holding the key
	Address            string

	// PartialSign asks the signer for a witness-set fragment to merge
	// instead of a fully signed transaction.
	PartialSign bool `toml:",omitempty" json:",omitempty"`
}

// IndexerConfig ledger indexer config
type IndexerConfig struct {
	BlockfrostServer string   `toml:",omitempty" json:",omitempty"`
	ProjectIDEnv     string   `toml:",omitempty" json:",omitempty"` // env var holding the api key
	GatewayURLs      []string `toml:",omitempty" json:",omitempty"`
	Timeout          int      `toml:",omitempty" json:",omitempty"` // seconds
}

// SelectorConfig utxo selection config
type SelectorConfig struct {
	// DustPolicy is "fold-fee" or "add-input": what to do when change
	// falls below the ledger minimum.
	DustPolicy string `toml:",omitempty" json:",omitempty"`
	MinUTXO    uint64 `toml:",omitempty" json:",omitempty"`
}

// DustPolicyValue maps the configured string onto the selector enum.
func (c *SelectorConfig) DustPolicyValue() (utxo.DustPolicy, error) {
	switch c.DustPolicy {
	case "", "fold-fee":
		return utxo.DustFoldFee, nil
	case "add-input":
		return utxo.DustAddInput, nil
	default:
		return 0, fmt.Errorf("unknown dust policy '%v'", c.DustPolicy)
	}
}

// GetConfig returns the loaded config.
func GetConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	return config
}

// GetIdentifier returns the configured app identifier.
func GetIdentifier() string {
	return GetConfig().Identifier
}

// SignerPrivateKey resolves the signer key from the environment.
func (c *Config) SignerPrivateKey() string {
	if c.Signer == nil || c.Signer.PrivateKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Signer.PrivateKeyEnv)
}

// BlockfrostProjectID resolves the indexer api key from the environment.
func (c *Config) BlockfrostProjectID() string {
	if c.Indexer == nil || c.Indexer.ProjectIDEnv == "" {
		return ""
	}
	return os.Getenv(c.Indexer.ProjectIDEnv)
}

// LoadConfig loads the toml config file and fatals on any problem.
func LoadConfig(filePath string) *Config {
	log.Info("load config file", "configFile", filePath)
	if !common.FileExist(filePath) {
		log.Fatalf("LoadConfig error: config file '%v' not exist", filePath)
	}

	newConfig := &Config{}
	if _, err := toml.DecodeFile(filePath, newConfig); err != nil {
		log.Fatalf("LoadConfig error (toml DecodeFile): %v", err)
	}
	if err := newConfig.CheckConfig(); err != nil {
		log.Fatalf("LoadConfig check config failed: %v", err)
	}

	configLock.Lock()
	config = newConfig
	configFile = filePath
	configLock.Unlock()

	bs, _ := json.MarshalIndent(newConfig, "", "  ")
	log.Tracef("LoadConfig finished. %v", string(bs))
	return newConfig
}

// ReloadConfig reloads the config file in place. A broken file keeps
// the previous config instead of killing the process.
func ReloadConfig() {
	configLock.RLock()
	filePath := configFile
	configLock.RUnlock()
	if filePath == "" {
		return
	}
	newConfig := &Config{}
	if _, err := toml.DecodeFile(filePath, newConfig); err != nil {
		log.Error("ReloadConfig decode failed, keep old config", "err", err)
		return
	}
	if err := newConfig.CheckConfig(); err != nil {
		log.Error("ReloadConfig check failed, keep old config", "err", err)
		return
	}
	configLock.Lock()
	config = newConfig
	configLock.Unlock()
	log.Info("ReloadConfig success", "configFile", filePath)
}

// CheckConfig check config
func (c *Config) CheckConfig() error {
	if c.Identifier == "" {
		return errors.New("must config nonempty 'Identifier'")
	}
	switch c.Network {
	case "mainnet", "preprod", "preview":
	default:
		return fmt.Errorf("unknown network '%v'", c.Network)
	}
	if c.Trade == nil || c.Trade.BaseURL == "" {
		return errors.New("must config 'Trade' with nonempty 'BaseURL'")
	}
	if c.Signer == nil {
		return errors.New("must config 'Signer'")
	}
	if c.Signer.Address == "" {
		return errors.New("must config nonempty 'Signer.Address'")
	}
	if !c.Signer.SignWithPrivateKey && c.Signer.WalletURL == "" {
		return errors.New("must config 'Signer.WalletURL' or enable 'Signer.SignWithPrivateKey'")
	}
	if c.Signer.SignWithPrivateKey && c.Signer.PrivateKeyEnv == "" {
		return errors.New("must config 'Signer.PrivateKeyEnv' when 'Signer.SignWithPrivateKey' is on")
	}
	if c.Indexer == nil {
		return errors.New("must config 'Indexer'")
	}
	if c.Indexer.ProjectIDEnv == "" && len(c.Indexer.GatewayURLs) == 0 {
		return errors.New("must config 'Indexer.ProjectIDEnv' or 'Indexer.GatewayURLs'")
	}
	if c.Selector != nil {
		if _, err := c.Selector.DustPolicyValue(); err != nil {
			return err
		}
	}
	return nil
}
