package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/core/workbench"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/storeapi"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// clientConfig is read straight from the environment so the report runs without the
// server's database and redis settings.
type clientConfig struct {
	Addr    string        `env:"SUPPLY_API_ADDR, default=http://127.0.0.1:8080"`
	Timeout time.Duration `env:"SUPPLY_API_TIMEOUT, default=15s"`
}

type options struct {
	drafts   bool
	statuses []string
	search   string
	pageSize int
}

func New() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "report",
		Long:         "Print material requirements with their computed status, or the draft purchase orders",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.drafts, "drafts", false, "print draft purchase orders grouped by supplier")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "stored statuses to include")
	cmd.Flags().StringVar(&opts.search, "search", "", "match notes, product or supplier order number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 100, "rows to fetch")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	conf := &clientConfig{}
	if err := envconfig.Process(ctx, conf); err != nil {
		return err
	}

	filter := &requirement.ListReq{Search: opts.search}
	filter.PageSize = opts.pageSize
	for _, s := range opts.statuses {
		filter.Statuses = append(filter.Statuses, model.RequirementStatus(s))
	}

	session := workbench.NewSession(storeapi.New(conf.Addr, conf.Timeout), workbench.NotifierFunc(func(n workbench.Notice) {
		fmt.Fprintln(os.Stderr, renderNotice(n))
	}), filter)

	if opts.drafts {
		groups, err := session.DraftGroups(ctx)
		if err != nil {
			return err
		}
		fmt.Println(renderDrafts(groups))
		return nil
	}

	if err := session.Load(ctx); err != nil {
		return err
	}
	fmt.Println(renderRequirements(session.Requirements(), session.Total()))
	return nil
}
