package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/contactbook/internal/domain/birthdays"
)

func (a *app) newBirthdaysCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "List contacts with a birthday in the next N days",
		Example: `  contactbook birthdays
  contactbook birthdays --days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Birthdays.DefaultDays
			}
			if days < 0 || days > birthdays.MaxHorizonDays {
				return fmt.Errorf("--days %d: %w", days, birthdays.ErrInvalidWindow)
			}

			svc, closeDB, err := a.openService(a.logger(cmd, "birthdays"))
			if err != nil {
				return err
			}
			defer closeDB()

			upcoming, err := svc.UpcomingBirthdays(cmd.Context(), days)
			if err != nil {
				return err
			}
			return PrintBirthdays(cmd.OutOrStdout(), upcoming, days)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "window length in days, today included (default from config)")
	return cmd
}
