package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jonafarm/market/chain"
	"github.com/jonafarm/market/config"
	"github.com/jonafarm/market/jsonx"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the product audit chain as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMarketConfigOrDefault(resolvedConfigPath())
		if err != nil {
			return err
		}
		return printChain(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func printChain(cfg *config.MarketConfig, out io.Writer) error {
	s, err := openChainStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	blocks, err := s.ReadAll()
	if err != nil {
		return err
	}
	if blocks == nil {
		blocks = []chain.Block{}
	}
	data, err := jsonx.MarshalIndent(blocks, "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
