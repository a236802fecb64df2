package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/educert/backend/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering` query param. Field names end up in ORDER BY
// clauses, so anything outside the caller's sortable column list is dropped.
func (ord *Ordering) Bind(ctx echo.Context, sortable ...string) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !isSortable(field, sortable) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func isSortable(field string, sortable []string) bool {
	for _, col := range sortable {
		if col == field {
			return true
		}
	}
	return false
}

// intParam parses an integer path param; a non-numeric value can never
// match an existing row so it maps to a 404.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// intQueryParam parses a required integer query param.
func intQueryParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "a valid integer is required"})
	}
	return val, nil
}
