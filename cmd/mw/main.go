package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	cl "mafiawar/internal/cli"
	"mafiawar/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()

	root := &cobra.Command{
		Use:          "mw",
		Short:        "MafiaWar economy admin CLI",
		SilenceUsage: true,
	}

	root.AddCommand(
		newPlayerCmd(cfg),
		newBankCmd(cfg),
		newCryptoCmd(cfg),
		newCrimeCmd(cfg),
		newJailCmd(cfg),
		newAssetsCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(cfg config.CLIConfig) *cl.Client {
	return cl.NewClient(cfg.APIBaseURL, cfg.APIToken)
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newPlayerCmd(cfg config.CLIConfig) *cobra.Command {
	player := &cobra.Command{
		Use:   "player",
		Short: "Player profile commands",
	}

	var username string
	ensure := &cobra.Command{
		Use:   "ensure <user_id>",
		Short: "Create the player if missing and show the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).EnsurePlayer(ctx, args[0], username)
			if err != nil {
				return err
			}
			return renderProfile(out)
		},
	}
	ensure.Flags().StringVar(&username, "username", "", "display name for new players")

	show := &cobra.Command{
		Use:   "show <user_id>",
		Short: "Show a player's profile and balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Profile(ctx, args[0])
			if err != nil {
				return err
			}
			return renderProfile(out)
		},
	}

	var limit int
	tx := &cobra.Command{
		Use:   "tx <user_id>",
		Short: "Show a player's recent transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Transactions(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return renderTransactions(out)
		},
	}
	tx.Flags().IntVar(&limit, "limit", 20, "rows to fetch")

	var creditPool, creditKind string
	credit := &cobra.Command{
		Use:   "credit <user_id> <amount>",
		Short: "Grant money to a player (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Credit(ctx, args[0], amount, creditPool, creditKind, uuid.NewString())
			if err != nil {
				return err
			}
			return renderCredit(out)
		},
	}
	credit.Flags().StringVar(&creditPool, "pool", "cash", "pool to credit (cash or bank)")
	credit.Flags().StringVar(&creditKind, "kind", "admin_grant", "label recorded on the transaction log")

	player.AddCommand(ensure, show, tx, credit)
	return player
}

func newBankCmd(cfg config.CLIConfig) *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Deposit, withdraw and tier upgrades",
	}

	deposit := &cobra.Command{
		Use:   "deposit <user_id> <amount>",
		Short: "Move cash into the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).BankTransfer(ctx, args[0], amount, "cash", "bank", uuid.NewString())
			if err != nil {
				return err
			}
			return renderTransfer(out, "Deposited")
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw <user_id> <amount>",
		Short: "Move bank funds to cash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).BankTransfer(ctx, args[0], amount, "bank", "cash", uuid.NewString())
			if err != nil {
				return err
			}
			return renderTransfer(out, "Withdrew")
		},
	}

	upgrade := &cobra.Command{
		Use:   "upgrade <user_id>",
		Short: "Buy the next bank tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).BankUpgrade(ctx, args[0], uuid.NewString())
			if err != nil {
				return err
			}
			return renderTierUpgrade(out)
		},
	}

	bank.AddCommand(deposit, withdraw, upgrade)
	return bank
}

func newCryptoCmd(cfg config.CLIConfig) *cobra.Command {
	crypto := &cobra.Command{
		Use:   "crypto",
		Short: "Coin prices and trading",
	}

	prices := &cobra.Command{
		Use:   "prices",
		Short: "Show current coin prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Coins(ctx)
			if err != nil {
				return err
			}
			return renderCoins(out)
		},
	}

	var pool string
	buy := &cobra.Command{
		Use:   "buy <user_id> <coin_id> <amount>",
		Short: "Buy coins with dollars",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).BuyCrypto(ctx, args[0], args[1], amount, pool, uuid.NewString())
			if err != nil {
				return err
			}
			return renderTrade(out, "BOUGHT")
		},
	}
	buy.Flags().StringVar(&pool, "pool", "cash", "pay from cash or bank")

	var sellPool string
	sell := &cobra.Command{
		Use:   "sell <user_id> <coin_id> <coin_amount>",
		Short: "Sell coins for dollars",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			coins, err := strconv.ParseFloat(args[2], 64)
			if err != nil || coins <= 0 {
				return fmt.Errorf("invalid coin amount %q", args[2])
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).SellCrypto(ctx, args[0], args[1], coins, sellPool, uuid.NewString())
			if err != nil {
				return err
			}
			return renderTrade(out, "SOLD")
		},
	}
	sell.Flags().StringVar(&sellPool, "pool", "cash", "credit proceeds to cash or bank")

	crypto.AddCommand(prices, buy, sell)
	return crypto
}

func newCrimeCmd(cfg config.CLIConfig) *cobra.Command {
	crime := &cobra.Command{
		Use:     "crime",
		Short:   "List and commit crimes",
		Aliases: []string{"crimes"},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available crimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Crimes(ctx)
			if err != nil {
				return err
			}
			return renderCrimes(out)
		},
	}

	commit := &cobra.Command{
		Use:   "commit <user_id> <crime_id>",
		Short: "Attempt a crime",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).CommitCrime(ctx, args[0], args[1], uuid.NewString())
			if err != nil {
				return err
			}
			return renderCrimeResult(out)
		},
	}

	crime.AddCommand(list, commit)
	return crime
}

func newJailCmd(cfg config.CLIConfig) *cobra.Command {
	jail := &cobra.Command{
		Use:   "jail",
		Short: "Jail status and bribes",
	}

	status := &cobra.Command{
		Use:   "status <user_id>",
		Short: "Show jail status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).JailStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return renderJailStatus(out)
		},
	}

	bribe := &cobra.Command{
		Use:   "bribe <user_id>",
		Short: "Pay the bribe for early release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Bribe(ctx, args[0], uuid.NewString())
			if err != nil {
				return err
			}
			return renderBribe(out)
		},
	}

	var sentenceMinutes, sentenceSeverity int
	var sentenceCrime string
	sentence := &cobra.Command{
		Use:   "sentence <user_id>",
		Short: "Jail a player (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Sentence(ctx, args[0], sentenceMinutes, sentenceSeverity, sentenceCrime, uuid.NewString())
			if err != nil {
				return err
			}
			return renderSentence(out)
		},
	}
	sentence.Flags().IntVar(&sentenceMinutes, "minutes", 30, "sentence length in minutes")
	sentence.Flags().IntVar(&sentenceSeverity, "severity", 3, "severity 1..10")
	sentence.Flags().StringVar(&sentenceCrime, "crime", "", "label recorded on the sentence")

	jail.AddCommand(status, sentence, bribe)
	return jail
}

func newAssetsCmd(cfg config.CLIConfig) *cobra.Command {
	assets := &cobra.Command{
		Use:     "assets",
		Short:   "Income asset commands",
		Aliases: []string{"asset"},
	}

	templates := &cobra.Command{
		Use:   "templates",
		Short: "List purchasable asset templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).AssetTemplates(ctx)
			if err != nil {
				return err
			}
			return renderAssetTemplates(out)
		},
	}

	list := &cobra.Command{
		Use:   "list <user_id>",
		Short: "List a player's assets with pending income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).Assets(ctx, args[0])
			if err != nil {
				return err
			}
			return renderAssetList(out)
		},
	}

	var payMethod string
	buy := &cobra.Command{
		Use:   "buy <user_id> <template_id>",
		Short: "Purchase an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).PurchaseAsset(ctx, args[0], args[1], payMethod, uuid.NewString())
			if err != nil {
				return err
			}
			return renderPurchase(out, args[1])
		},
	}
	buy.Flags().StringVar(&payMethod, "pay", "cash", "cash, bank or mixed")

	collect := &cobra.Command{
		Use:   "collect <user_id>",
		Short: "Collect all pending asset income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).CollectAssets(ctx, args[0], uuid.NewString())
			if err != nil {
				return err
			}
			return renderCollection(out)
		},
	}

	var upPay string
	upgrade := &cobra.Command{
		Use:   "upgrade <user_id> <asset_id> <income|security>",
		Short: "Upgrade an asset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid asset id %q", args[1])
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			out, err := newClient(cfg).UpgradeAsset(ctx, args[0], assetID, args[2], upPay, uuid.NewString())
			if err != nil {
				return err
			}
			return renderUpgrade(out)
		},
	}
	upgrade.Flags().StringVar(&upPay, "pay", "cash", "cash, bank or mixed")

	assets.AddCommand(templates, list, buy, collect, upgrade)
	return assets
}

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
