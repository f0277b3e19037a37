package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"assetfeed/internal/aggregate"
	"assetfeed/internal/provider"
)

var (
	fetchTickers string
	fetchIDs     string
	fetchDays    int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the watchlist once and print it as JSON",
	Long: `Fetch every ticker once, going through the cache, and print the
assets as a JSON array. Tickers and crypto ids default to the refresh
settings in the config.

Examples:
  assetfeed fetch
  assetfeed fetch --tickers BTC,AAPL --ids BTC=bitcoin --days 30`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchTickers, "tickers", "t", "", "comma-separated tickers")
	fetchCmd.Flags().StringVar(&fetchIDs, "ids", "", "crypto id map, e.g. BTC=bitcoin,ETH=ethereum")
	fetchCmd.Flags().IntVarP(&fetchDays, "days", "d", 0, "lookback in days")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := a.Config.Refresh.Tickers
	if fetchTickers != "" {
		tickers = splitCSV(fetchTickers)
	}
	ids := a.Config.Refresh.CryptoIDs
	if fetchIDs != "" {
		if ids, err = parseIDs(fetchIDs); err != nil {
			return err
		}
	}
	days := a.Config.Refresh.LookbackDays
	if fetchDays > 0 {
		days = fetchDays
	}

	results := a.FetchAll(ctx, tickers, ids, days)
	counts := aggregate.Counts(results)
	a.Log.WithFields(logrus.Fields{
		"fresh":  counts[provider.StatusFresh],
		"cached": counts[provider.StatusCached],
		"stale":  counts[provider.StatusStale],
		"failed": counts[provider.StatusFailed],
	}).Info("fetch complete")

	assets := make([]provider.Asset, len(results))
	for i, r := range results {
		assets[i] = r.Asset
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(assets)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseIDs reads SYMBOL=id pairs separated by commas.
func parseIDs(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitCSV(s) {
		sym, id, ok := strings.Cut(pair, "=")
		sym, id = strings.TrimSpace(sym), strings.TrimSpace(id)
		if !ok || sym == "" || id == "" {
			return nil, fmt.Errorf("invalid id mapping %q, want SYMBOL=id", pair)
		}
		out[sym] = id
	}
	return out, nil
}
