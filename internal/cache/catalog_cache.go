package cache

// CatalogCache holds the serialized public course list so the hot GET
// /courses path does not hit the database on every request. Mutating
// operations invalidate it; invariant checks always read the store directly.
type CatalogCache interface {
	GetCourseList() ([]byte, error) // returns nil, nil on cache miss
	SetCourseList(payload []byte) error
	Invalidate() error

	Close() error
}
