package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakhatrip/sakhatrip-go/internal/application/trips"
)

// NewPlanCommand builds the one-shot trip query command used for ops
// debugging against a live graph.
func NewPlanCommand() *cobra.Command {
	var (
		fromCity   string
		toCity     string
		date       string
		passengers int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip between two cities",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := NewApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Mediator.Send(ctx, &trips.PlanTripQuery{
				FromCity:   fromCity,
				ToCity:     toCity,
				Date:       date,
				Passengers: passengers,
			})
			if err != nil {
				return err
			}

			result := resp.(*trips.PlanTripResponse)
			if !result.Success {
				return fmt.Errorf("%s: %s", result.ErrorCode, result.Error)
			}

			fmt.Printf("graph %s, answered in %dms\n", result.GraphVersion, result.ExecutionTimeMs)
			for i, route := range result.Routes {
				printRoute(fmt.Sprintf("route %d", i+1), route)
			}
			for i, route := range result.Alternatives {
				printRoute(fmt.Sprintf("alternative %d", i+1), route)
			}
			if result.RiskAssessment != nil {
				fmt.Printf("risk: %.0f (%s)\n", result.RiskAssessment.Score, result.RiskAssessment.Level)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromCity, "from", "", "Departure city")
	cmd.Flags().StringVar(&toCity, "to", "", "Destination city")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Travel date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&passengers, "passengers", 1, "Passenger count")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printRoute(label string, route trips.TripRoute) {
	fmt.Printf("%s: %.0f min, %.0f km, %.0f RUB, %d transfers\n",
		label, route.TotalDuration, route.TotalDistanceKm, route.TotalPriceRub, route.TransferCount)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  FROM\tTO\tTYPE\tDEP\tARR\tMIN\tRUB")
	for _, s := range route.Segments {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%.0f\t%.0f\n",
			s.FromName, s.ToName, s.TransportType, s.DepartureTime, s.ArrivalTime, s.DurationMinutes, s.PriceRub)
	}
	_ = w.Flush()
}
