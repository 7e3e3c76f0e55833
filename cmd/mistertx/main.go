// Command mistertx assembles, signs and submits leveraged trading
// transactions, optionally serving an RPC API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/assembler"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/indexer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/internal/txapi"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/params"
	rpcserver "github.com/LavonTMCQ/M-I-S-T-E-R-sub009/rpc/server"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/signer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/submitter"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/trade"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/worker"
)

var (
	clientIdentifier = "mistertx"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the mistertx command line interface")
)

func initApp() {
	app.Action = mistertx
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.EnvFileFlag,
		utils.RunServerFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func mistertx(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}

	loadEnvFile(ctx)

	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadConfig(configFile)
	go params.WatchAndReloadConfig()

	asm, watcher, err := buildAssembler(config)
	if err != nil {
		log.Fatal("build assembler failed", "err", err)
	}
	txapi.Init(asm, asm.Indexer, watcher)

	watcher.StartConfirmJob()
	time.Sleep(10 * time.Millisecond)

	if ctx.Bool(utils.RunServerFlag.Name) {
		if config.APIServer == nil {
			log.Fatal("runserver requires an 'APIServer' config section")
		}
		rpcserver.StartAPIServer()
	}

	go utils.WaitInterrupt()
	utils.TopWaitGroup.Wait()
	return nil
}

func loadEnvFile(ctx *cli.Context) {
	envFile := ctx.String(utils.EnvFileFlag.Name)
	if envFile == "" {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Fatal("load env file failed", "envFile", envFile, "err", err)
	}
	log.Info("load env file success", "envFile", envFile)
}

func buildAssembler(config *params.Config) (*assembler.Assembler, *worker.ConfirmWatcher, error) {
	idx, err := buildIndexer(config)
	if err != nil {
		return nil, nil, err
	}
	sig, relay, err := buildSigner(config)
	if err != nil {
		return nil, nil, err
	}

	pool := utxo.NewPool()
	watcher := worker.NewConfirmWatcher(idx, pool, config.Confirmations)

	opts := utxo.SelectOptions{}
	if config.Selector != nil {
		policy, err := config.Selector.DustPolicyValue()
		if err != nil {
			return nil, nil, err
		}
		opts.DustPolicy = policy
		opts.MinUTXO = config.Selector.MinUTXO
	}

	asm := &assembler.Assembler{
		Trade:         trade.NewClient(config.Trade.BaseURL, config.Trade.Timeout),
		Signer:        sig,
		Indexer:       idx,
		Pool:          pool,
		Submitter:     submitter.New(relay, idx),
		OwnerAddress:  config.Signer.Address,
		PartialSign:   config.Signer.PartialSign,
		SelectOptions: opts,
		Tracker:       watcher,
	}
	return asm, watcher, nil
}

func buildIndexer(config *params.Config) (indexer.Indexer, error) {
	cfg := config.Indexer
	if projectID := config.BlockfrostProjectID(); projectID != "" {
		log.Info("use blockfrost indexer", "server", cfg.BlockfrostServer)
		return indexer.NewBlockfrostNode(cfg.BlockfrostServer, projectID, cfg.Timeout), nil
	}
	if len(cfg.GatewayURLs) > 0 {
		log.Info("use graphql gateway indexer", "gateways", len(cfg.GatewayURLs))
		return indexer.NewGatewayNode(cfg.GatewayURLs), nil
	}
	return nil, indexer.ErrNoBackend
}

func buildSigner(config *params.Config) (signer.Signer, signer.Relay, error) {
	cfg := config.Signer
	if cfg.SignWithPrivateKey {
		key := config.SignerPrivateKey()
		if key == "" {
			return nil, nil, fmt.Errorf("signer key env '%v' is empty", cfg.PrivateKeyEnv)
		}
		localSigner, err := signer.NewLocalKeySigner(key)
		if err != nil {
			return nil, nil, err
		}
		log.Info("use local key signer")
		// no relay channel with a local key, submission goes to the indexer
		return localSigner, nil, nil
	}
	bridge := signer.NewWalletBridge(cfg.WalletURL, cfg.Timeout)
	log.Info("use wallet bridge signer", "url", cfg.WalletURL)
	return bridge, bridge, nil
}
