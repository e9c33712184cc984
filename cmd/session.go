package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/config"
	"github.com/tayloree/order-catalog/internal/filter"
	"github.com/tayloree/order-catalog/internal/logger"
	"github.com/tayloree/order-catalog/internal/names"
	"github.com/tayloree/order-catalog/internal/rules"
)

// session is everything a command needs to turn sources into a snapshot.
type session struct {
	cfg        *config.Config
	log        *logger.Logger
	parser     *names.Parser
	classifier *category.Classifier
	client     *api.Client
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, invalidArgsError(err.Error(), "Check ORDERCAT_* environment variables.")
	}
	if len(flagSources) > 0 {
		cfg.SetSources(strings.Join(flagSources, ","))
	}
	if flagRules != "" {
		cfg.RulesFile = flagRules
	}
	if flagLogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(flagLogLevel))
		if err := cfg.Validate(); err != nil {
			return nil, invalidArgsError(
				fmt.Sprintf("invalid value for --log-level: %q", flagLogLevel),
				"ordercat --log-level debug",
			)
		}
	}

	s := &session{
		cfg: cfg,
		log: logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
			Output: cmd.ErrOrStderr(),
		}),
		parser:     names.New(names.DefaultOptions()),
		classifier: category.Default(),
		client:     api.NewClient(cfg.HTTPTimeout),
	}

	if cfg.RulesFile != "" {
		file, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, invalidArgsError(
				fmt.Sprintf("loading rules: %v", err),
				"Fix the rules file or drop --rules.",
			)
		}
		if s.parser, err = file.Parser(); err != nil {
			return nil, invalidArgsError(fmt.Sprintf("loading rules: %v", err))
		}
		s.classifier = file.Classifier()
	}
	return s, nil
}

func (s *session) requireSources() error {
	if len(s.cfg.Sources) > 0 {
		return nil
	}
	return invalidArgsError(
		"please provide --source FILE|URL or set ORDERCAT_SOURCE",
		"ordercat --source orders.json",
		"ordercat --source orders.csv --source https://example.com/orders.json",
	)
}

func (s *session) loader() *catalog.Loader {
	agg := catalog.NewAggregator(
		catalog.WithParser(s.parser),
		catalog.WithClassifier(s.classifier),
		catalog.WithLogger(s.log),
	)
	return catalog.NewLoader(s.client, s.cfg.Sources, agg)
}

// snapshot loads every source once. A load failure is an upstream error
// and an empty result is the "no data" state.
func (s *session) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if err := s.requireSources(); err != nil {
		return nil, err
	}
	snap, err := s.loader().Load(ctx)
	if err != nil {
		return nil, loadError(s.cfg.Sources, err)
	}
	if snap.Empty() {
		msg := "no data: the sources contain no purchases"
		if snap.Dropped > 0 {
			msg = fmt.Sprintf("no data: all %d records had unparseable dates", snap.Dropped)
		}
		return nil, notFoundError(msg, "Check the order_date column of your source.")
	}
	return snap, nil
}

// view loads a snapshot and applies the view flags to it. An empty result
// is the "no results" state.
func (s *session) view(ctx context.Context, opts filter.Options) (*catalog.Snapshot, []catalog.Group, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := resolveCategoryFlag(snap, &opts); err != nil {
		return nil, nil, err
	}
	groups := filter.View(snap.Groups(), opts)
	if len(groups) == 0 {
		return nil, nil, notFoundError(
			"no products match your filters",
			"Relax filters like --category/--query.",
		)
	}
	return snap, groups, nil
}
