package core

import "fmt"

// DBOrdering is a single ORDER BY term parsed from the `ordering` query param.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", ord.Field, direction)
}
