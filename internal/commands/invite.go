package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/tenantflow/internal/models"
)

func InviteCmd() *cobra.Command {
	var (
		landlord string
		property string
		unit     string
		email    string
		first    string
		last     string
		phone    string
		start    string
		end      string
		rent     string
		deposit  string
	)

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Create a tenant invitation and send the invite email",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			landlordID, err := uuid.Parse(landlord)
			if err != nil {
				return fmt.Errorf("invalid landlord id: %v", err)
			}
			propertyID, err := uuid.Parse(property)
			if err != nil {
				return fmt.Errorf("invalid property id: %v", err)
			}

			var unitID *uuid.UUID
			if unit != "" {
				id, err := uuid.Parse(unit)
				if err != nil {
					return fmt.Errorf("invalid unit id: %v", err)
				}
				unitID = &id
			}

			leaseStart, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid lease start: %v", err)
			}
			leaseEnd, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid lease end: %v", err)
			}

			rentAmount, err := decimal.NewFromString(rent)
			if err != nil {
				return fmt.Errorf("invalid rent amount: %v", err)
			}
			securityDeposit, err := decimal.NewFromString(deposit)
			if err != nil {
				return fmt.Errorf("invalid security deposit: %v", err)
			}

			inv, err := app.inviter.Invite(cmd.Context(), &models.Invitation{
				LandlordID:      landlordID,
				PropertyID:      propertyID,
				UnitID:          unitID,
				Email:           email,
				FirstName:       first,
				LastName:        last,
				Phone:           phone,
				LeaseStart:      leaseStart,
				LeaseEnd:        leaseEnd,
				RentAmount:      rentAmount,
				SecurityDeposit: securityDeposit,
			})
			if err != nil {
				return fmt.Errorf("failed to create invitation: %v", err)
			}

			fmt.Printf("Invitation %s created for %s (expires %s)\n", inv.ID, inv.Email, inv.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&landlord, "landlord", "", "Landlord id (required)")
	cmd.Flags().StringVar(&property, "property", "", "Property id (required)")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit id (omit to invite to the whole property)")
	cmd.Flags().StringVar(&email, "email", "", "Invitee email (required)")
	cmd.Flags().StringVar(&first, "first-name", "", "Invitee first name (required)")
	cmd.Flags().StringVar(&last, "last-name", "", "Invitee last name (required)")
	cmd.Flags().StringVar(&phone, "phone", "", "Invitee phone")
	cmd.Flags().StringVar(&start, "lease-start", "", "Lease start date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "lease-end", "", "Lease end date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&rent, "rent", "0", "Monthly rent amount")
	cmd.Flags().StringVar(&deposit, "deposit", "0", "Security deposit amount")

	_ = cmd.MarkFlagRequired("landlord")
	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("lease-start")
	_ = cmd.MarkFlagRequired("lease-end")

	return cmd
}
