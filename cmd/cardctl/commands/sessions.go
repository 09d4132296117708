package commands

import (
	"fmt"
	"time"

	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type sessionsOutput struct {
	CollectionID     string     `json:"collection_id"`
	Now              time.Time  `json:"now"`
	Visible          []string   `json:"visible"`
	Live             []string   `json:"live"`
	Upcoming         []string   `json:"upcoming"`
	Past             []string   `json:"past"`
	Fallback         bool       `json:"fallback"`
	NextTransitionMs *int64     `json:"next_transition_ms"`
	NextTransitionAt *time.Time `json:"next_transition_at,omitempty"`
	DataErrors       []string   `json:"data_errors,omitempty"`
}

func newSessionsCmd(v *viper.Viper) *cobra.Command {
	var fallback string

	cmd := &cobra.Command{
		Use:   "sessions <collection-file>",
		Short: "Show which sessions are live, upcoming and past",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fallback != "" && fallback != "nearest" {
				return fmt.Errorf("--fallback must be 'nearest'")
			}
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			c, err := loadCollection(args[0])
			if err != nil {
				return err
			}

			scheduler := eventtiming.NewScheduler(
				eventtiming.WithClock(s.clock),
				eventtiming.WithLogger(s.logger),
			)
			timing := scheduler.Compute(eventtiming.Sessions(c.Cards))

			out := sessionsOutput{
				CollectionID: c.ID,
				Now:          timing.Now,
				Visible:      models.CardIDs(timing.VisibleSessions),
				Live:         models.CardIDs(timing.Live),
				Upcoming:     models.CardIDs(timing.UpcomingByStart()),
				Past:         models.CardIDs(timing.Past),
				DataErrors:   errorStrings(timing.DataErrors),
			}
			if len(out.Visible) == 0 && fallback == "nearest" {
				if nearest := timing.NearestUpcoming(); nearest != nil {
					out.Visible = []string{nearest.ID}
					out.Fallback = true
				}
			}
			if ms, ok := timing.NextTransitionMs(); ok {
				out.NextTransitionMs = &ms
			}
			if at, ok := timing.NextTransitionAt(); ok {
				out.NextTransitionAt = &at
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&fallback, "fallback", "", "show the nearest upcoming session when none is live ('nearest')")
	return cmd
}
