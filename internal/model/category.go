// Package model defines the core domain types shared across the application.
package model

// Category is a canonical matching label maintained by the user.
// The Key is the text matched against transaction descriptions; Category and
// DestinationAcc are the values assigned when the key wins a matching pass.
type Category struct {
	Key            string
	Category       string
	DestinationAcc string
	ID             int
}

// UserCorrection is a learned label captured from a manual transaction edit.
// The description acts as a natural key: at most one correction exists per
// distinct description, and the newest edit always wins.
type UserCorrection struct {
	Description    string
	Category       string
	DestinationAcc string
	ID             int
}
