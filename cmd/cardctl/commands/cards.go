package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/benvon/card-collection/internal/filterer"
	"github.com/benvon/card-collection/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cardsOutput struct {
	CollectionID string         `json:"collection_id"`
	Now          time.Time      `json:"now"`
	Cards        []*models.Card `json:"cards"`
	Total        int            `json:"total"`
	DataErrors   []string       `json:"data_errors,omitempty"`
}

func newCardsCmd(v *viper.Viper) *cobra.Command {
	var (
		filters    []string
		req        filterer.Request
		logic      string
		sort       string
		fields     string
		bookmarks  string
		bookmarked bool
	)

	cmd := &cobra.Command{
		Use:   "cards <collection-file>",
		Short: "Run a collection's cards through the filter pipeline",
		Long: `Run a collection's cards through the filter pipeline and print the result as JSON.

Filters are given as group=tag[,tag...], e.g. --filter topic=topic/ai,topic/design.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			c, err := loadCollection(args[0])
			if err != nil {
				return err
			}

			req.Filters, err = parseFilters(filters)
			if err != nil {
				return err
			}
			req.Logic = models.FilterType(logic)
			req.Sort = models.SortOption(sort)
			req.Fields = splitCSV(fields)
			req.BookmarkedOnly = bookmarked
			req.Bookmarks = splitCSV(bookmarks)

			f, err := filterer.Apply(c, req,
				filterer.WithClock(s.clock),
				filterer.WithLogger(s.logger),
				filterer.WithTagMatcher(s.matcher),
				filterer.WithLanguage(s.lang),
			)
			if err != nil {
				return err
			}

			cards := f.FilteredCards()
			return writeJSON(cmd.OutOrStdout(), cardsOutput{
				CollectionID: c.ID,
				Now:          nowOf(s),
				Cards:        cards,
				Total:        len(cards),
				DataErrors:   errorStrings(f.DataErrors()),
			})
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter group selection as group=tag[,tag...] (repeatable)")
	cmd.Flags().StringSliceVar(&req.Panels, "panel", nil, "limit filtering to these group keys")
	cmd.Flags().StringVar(&logic, "logic", "", "filter logic: and, or, xor (default: collection setting)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort option (default: collection setting)")
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "search text")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated search fields (default: collection setting)")
	cmd.Flags().BoolVar(&req.Registered, "registered", false, "include gated cards")
	cmd.Flags().BoolVar(&bookmarked, "bookmarked", false, "keep only bookmarked cards")
	cmd.Flags().StringVar(&bookmarks, "bookmarks", "", "comma-separated bookmarked card ids")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum number of cards")

	return cmd
}

func parseFilters(raw []string) (models.FilterDirective, error) {
	directive := models.FilterDirective{}
	for _, entry := range raw {
		key, tags, ok := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --filter %q: expected group=tag[,tag...]", entry)
		}
		directive[key] = append(directive[key], splitCSV(tags)...)
	}
	return directive, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
