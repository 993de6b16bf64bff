package types

import "github.com/m-mizutani/goerr/v2"

// Login represents a GitHub login (user name), the unique key of a seat
type Login string

// Validate checks if the Login is valid
func (l Login) Validate() error {
	if l == "" {
		return goerr.New("login cannot be empty")
	}
	return nil
}

// String returns the string representation of Login
func (l Login) String() string {
	return string(l)
}

// SubscriberID identifies one connected dashboard subscriber
type SubscriberID string

// String returns the string representation of SubscriberID
func (s SubscriberID) String() string {
	return string(s)
}
