package model

type Error struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

type Settings struct {
	SelfRegistrationAllowed bool `json:"SelfRegistrationAllowed"`
	MinPasswordLength       int  `json:"MinPasswordLength"`
}

// Page is a single page of a filtered and sorted listing.
type Page[T any] struct {
	Rows          []T   `json:"Rows"`
	TotalFiltered int   `json:"TotalFiltered"`
	TotalPages    int   `json:"TotalPages"`
	Page          int   `json:"Page"`
	StartIndex    int   `json:"StartIndex"`
	EndIndex      int   `json:"EndIndex"`
	VisiblePages  []int `json:"VisiblePages"`
}
