package domain

// Joined is a read-time join of an item with its author's profile. When
// the author document is gone, Item is nil and MissingAuthorID names the
// dangling reference.
type Joined[T any] struct {
	Item            *T
	MissingAuthorID string
}

// Found wraps an item whose author resolved.
func Found[T any](item *T) Joined[T] {
	return Joined[T]{Item: item}
}

// MissingAuthor records an item whose author could not be resolved.
func MissingAuthor[T any](authorID string) Joined[T] {
	return Joined[T]{MissingAuthorID: authorID}
}

// OK reports whether the author resolved.
func (j Joined[T]) OK() bool {
	return j.Item != nil
}

// Partition splits joined rows into resolved items, in order, and the
// ids of missing authors.
func Partition[T any](rows []Joined[T]) (items []*T, missing []string) {
	items = make([]*T, 0, len(rows))
	for _, r := range rows {
		if r.OK() {
			items = append(items, r.Item)
		} else {
			missing = append(missing, r.MissingAuthorID)
		}
	}
	return items, missing
}
