// Package activity records what contacts do with the mail they receive
// (sent, opened, clicked, unsubscribed) and answers the counters shown on
// the reports dashboard.
package activity
