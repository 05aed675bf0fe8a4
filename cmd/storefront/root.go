// AngelaMos | 2026
// root.go

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/config"
	"github.com/carterperez-dev/talentmarket/internal/storefront"
)

type app struct {
	configPath string
	token      string
	verbose    bool

	cfg   *config.ClientConfig
	api   storefront.API
	cache *apiclient.QueryCache
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse plans, check promo codes and pick a plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "client config file")
	root.PersistentFlags().StringVar(&a.token, "token", "", "bearer token, overrides TALENTMARKET_TOKEN")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newTiersCommand(a),
		newPromoCommand(a),
		newSelectCommand(a),
	)

	return root
}

func (a *app) init() error {
	if a.api != nil {
		return nil
	}

	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		return err
	}

	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}

	var opts []apiclient.Option
	if a.token != "" {
		opts = append(opts, apiclient.WithToken(a.token))
	}

	client, err := apiclient.New(cfg, opts...)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.api = client
	a.cache = apiclient.NewQueryCache(cfg.StaleTime)
	return nil
}

func (a *app) storefront(cmd *cobra.Command) *storefront.Storefront {
	logOut := io.Discard
	if a.verbose {
		logOut = cmd.ErrOrStderr()
	}

	return storefront.New(storefront.Config{
		API:   a.api,
		Cache: a.cache,
		Notifier: storefront.NotifierFunc(func(n storefront.Notification) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s: %s\n", n.Level, n.Title, n.Message)
		}),
		Navigator: storefront.NavigatorFunc(func(target string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redirect: %s\n", target)
		}),
		Paths: storefront.Paths{
			Checkout:   a.cfg.CheckoutPath,
			Onboarding: a.cfg.OnboardingPath,
		},
		Logger: slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
}
