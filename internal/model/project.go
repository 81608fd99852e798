package model

import "time"

// Project groups a set of transactions under one unit of work.
type Project struct {
	Created     time.Time
	ID          string
	Description string
	Completed   bool
}

// Asset is a named source account that imported transactions draw from.
type Asset struct {
	Name string
	ID   int
}
