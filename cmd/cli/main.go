package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"coderev/internal/database"
	porg "coderev/internal/platform/organization"
)

var (
	apiBaseURL string
	apiToken   string
)

type responseError struct {
	Message string `json:"message"`
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

var apiServiceBase = func() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetAuthToken(apiToken).
		SetError(&responseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf("%s", resp.Error().(*responseError).Message)
			}

			return nil
		})
}

var rootCmd = &cobra.Command{
	Use:   "coderev",
	Short: "CodeRev admin CLI",
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Get the authenticated user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiServiceBase().R().
			SetResult(&envelope[database.User]{}).
			Get("/users/me")
		if err != nil {
			return err
		}

		user := resp.Result().(*envelope[database.User]).Data

		fmt.Println("User ID :", user.ID)
		fmt.Println("Name    :", user.Name)
		fmt.Println("Email   :", user.Email)
		fmt.Println("Role    :", user.Role)
		fmt.Println("Status  :", user.Status)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organization members",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiServiceBase().R().
			SetResult(&envelope[[]database.User]{}).
			Get("/users/")
		if err != nil {
			return err
		}

		for _, user := range resp.Result().(*envelope[[]database.User]).Data {
			fmt.Printf("%s  %-30s %-10s %s\n", user.ID, user.Email, user.Role, user.Status)
		}
		return nil
	},
}

var userInviteCmd = &cobra.Command{
	Use:   "invite <email>",
	Short: "Invite a user to the organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"email": args[0],
				"role":  role,
			}).
			SetResult(&envelope[database.Invite]{}).
			Post("/users/invite")
		if err != nil {
			return err
		}

		invite := resp.Result().(*envelope[database.Invite]).Data

		fmt.Println("Invite token :", invite.Token)
		fmt.Println("Email        :", invite.Email)
		fmt.Println("Role         :", invite.Role)
		fmt.Println("Expires at   :", invite.ExpiresAt)
		return nil
	},
}

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage the organization",
}

type usageReport struct {
	Usage  database.Usage `json:"usage"`
	Limits porg.Limits    `json:"limits"`
}

var orgUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage counters against plan limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiServiceBase().R().
			SetResult(&envelope[usageReport]{}).
			Get("/organization/usage")
		if err != nil {
			return err
		}

		report := resp.Result().(*envelope[usageReport]).Data

		fmt.Printf("Users        : %d / %d\n", report.Usage.Users, report.Limits.MaxUsers)
		fmt.Printf("Repositories : %d / %d\n", report.Usage.Repositories, report.Limits.MaxRepositories)
		fmt.Printf("Scans        : %d / %d\n", report.Usage.ScansThisMonth, report.Limits.MaxScansPerMonth)
		fmt.Println("Last reset   :", report.Usage.LastResetDate)
		return nil
	},
}

var usageResetCmd = &cobra.Command{
	Use:   "reset-usage",
	Short: "Trigger the monthly scan-counter reset",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiServiceBase().R().
			SetResult(&envelope[map[string]int64]{}).
			Post("/management/reset-usage")
		if err != nil {
			return err
		}

		data := resp.Result().(*envelope[map[string]int64]).Data
		fmt.Println("Organizations reset:", data["organizations_reset"])
		return nil
	},
}

func main() {
	userInviteCmd.Flags().String("role", "developer", "Role for the invited user")

	userCmd.AddCommand(userProfileCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userInviteCmd)
	orgCmd.AddCommand(orgUsageCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(usageResetCmd)

	rootCmd.PersistentFlags().StringVarP(&apiBaseURL, "url", "u", "http://localhost:3000/api", "API base URL")
	rootCmd.PersistentFlags().StringVarP(&apiToken, "token", "t", "", "Bearer token")
	rootCmd.MarkPersistentFlagRequired("token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
