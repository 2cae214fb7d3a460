package models

// CounterField names one of the snippet's denormalized counter columns.
// The repository only accepts values from this whitelist, so a field name
// can never be interpolated into SQL from request input.
type CounterField string

const (
	// CounterPlays is the play_count column.
	CounterPlays CounterField = "play_count"
	// CounterLikes is the like_count column.
	CounterLikes CounterField = "like_count"
	// CounterComments is the comment_count column.
	CounterComments CounterField = "comment_count"
)

// Valid reports whether f is one of the known counter columns.
func (f CounterField) Valid() bool {
	switch f {
	case CounterPlays, CounterLikes, CounterComments:
		return true
	}
	return false
}

// Column returns the snippets table column name for this field.
func (f CounterField) Column() string {
	return string(f)
}
