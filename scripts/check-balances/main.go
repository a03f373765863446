// check-balances: queries the cbBTC balance for a set of wallets in parallel
// and prints a summary table. Reads the same environment as the cbbtc CLI.
//
// Run from the module root:
//
//	go run ./scripts/check-balances 0xWallet1 0xWallet2 ...
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/chain"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/config"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/token"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/wallet"
)

const rpcTimeout = 30 * time.Second

type result struct {
	wallet  string
	balance string
	err     string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "check-balances:", err)
		os.Exit(1)
	}
}

func run(wallets []string) error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	key, err := wallet.ResolveKey(cfg.PrivateKey, cfg.KeychainItem, wallet.DefaultKeystore)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	conn, err := chain.Dial(ctx, cfg.ChainConfig(key))
	if err != nil {
		return err
	}
	defer conn.Close()

	if len(wallets) == 0 {
		wallets = []string{conn.From().Hex()}
	}
	decimals, err := cfg.ResolveDecimals(ctx, conn.Token().Decimals)
	if err != nil {
		return err
	}
	client := token.New(conn.Token(), decimals)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, w := range wallets {
		wg.Add(1)
		go func(w string) {
			defer wg.Done()

			r := result{wallet: w, balance: "—"}
			bal, err := client.CheckBalance(ctx, w)
			if err != nil {
				r.err = shortErr(err)
			} else {
				r.balance = bal
			}

			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	printTable(results, conn.ChainID().String())
	return nil
}

func printTable(results []result, chainID string) {
	sort.Slice(results, func(i, j int) bool { return results[i].wallet < results[j].wallet })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CHAIN %s\n", chainID)
	fmt.Fprintln(w, "WALLET\tBALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 42)+"\t"+strings.Repeat("-", 20)+"\t"+strings.Repeat("-", 12))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s cbBTC\t%s\n", r.wallet, r.balance, r.err)
	}
	w.Flush()
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 60 {
		return s[:60] + "…"
	}
	return s
}
