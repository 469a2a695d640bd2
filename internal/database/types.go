package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Sub-records stored as JSONB columns. Each implements sql.Scanner and
// driver.Valuer so GORM round-trips them as a single column.

type ScanSettings struct {
	AutoScan           bool `json:"auto_scan"`
	ScanOnPush         bool `json:"scan_on_push"`
	ScanOnPullRequest  bool `json:"scan_on_pull_request"`
	MaxConcurrentScans int  `json:"max_concurrent_scans"`
}

type EmailNotificationSettings struct {
	Enabled    bool     `json:"enabled"`
	Recipients []string `json:"recipients"`
}

type SlackNotificationSettings struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel"`
}

type NotificationSettings struct {
	Email EmailNotificationSettings `json:"email"`
	Slack SlackNotificationSettings `json:"slack"`
}

type OrganizationSettings struct {
	AllowSelfRegistration    bool                 `json:"allow_self_registration"`
	RequireEmailVerification bool                 `json:"require_email_verification"`
	DefaultUserRole          Role                 `json:"default_user_role"`
	ScanSettings             ScanSettings         `json:"scan_settings"`
	NotificationSettings     NotificationSettings `json:"notification_settings"`
}

func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		AllowSelfRegistration:    false,
		RequireEmailVerification: true,
		DefaultUserRole:          RoleDeveloper,
		ScanSettings: ScanSettings{
			AutoScan:           true,
			ScanOnPush:         true,
			ScanOnPullRequest:  true,
			MaxConcurrentScans: 3,
		},
		NotificationSettings: NotificationSettings{
			Email: EmailNotificationSettings{Enabled: true},
			Slack: SlackNotificationSettings{Channel: "#code-reviews"},
		},
	}
}

func (s *OrganizationSettings) Scan(value any) error {
	return scanJSON(s, value)
}

func (s OrganizationSettings) Value() (driver.Value, error) {
	return valueJSON(s)
}

type BillingStatus string

const (
	BillingActive   BillingStatus = "active"
	BillingPastDue  BillingStatus = "past_due"
	BillingCanceled BillingStatus = "canceled"
	BillingUnpaid   BillingStatus = "unpaid"
)

type BillingInfo struct {
	CustomerID         string        `json:"customer_id"`
	SubscriptionID     string        `json:"subscription_id"`
	Status             BillingStatus `json:"status"`
	CurrentPeriodStart time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   time.Time     `json:"current_period_end"`
}

func (b *BillingInfo) Scan(value any) error {
	return scanJSON(b, value)
}

func (b BillingInfo) Value() (driver.Value, error) {
	return valueJSON(b)
}

type NotificationPreferences struct {
	Email   bool `json:"email"`
	Slack   bool `json:"slack"`
	Webhook bool `json:"webhook"`
}

type DashboardPreferences struct {
	DefaultView  string `json:"default_view"`
	ItemsPerPage int    `json:"items_per_page"`
}

type UserPreferences struct {
	Notifications NotificationPreferences `json:"notifications"`
	Dashboard     DashboardPreferences    `json:"dashboard"`
}

func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		Notifications: NotificationPreferences{Email: true, Webhook: true},
		Dashboard:     DashboardPreferences{DefaultView: "overview", ItemsPerPage: 10},
	}
}

func (p *UserPreferences) Scan(value any) error {
	return scanJSON(p, value)
}

func (p UserPreferences) Value() (driver.Value, error) {
	return valueJSON(p)
}

func scanJSON(target any, value any) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported Scan, storing driver.Value type %T into type %T", value, target)
	}
}

func valueJSON(source any) (driver.Value, error) {
	b, err := json.Marshal(source)
	return string(b), err
}
