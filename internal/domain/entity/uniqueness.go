package entity

// EntityKind names an entity variant whose uniqueness can be checked before insert.
type EntityKind string

const (
	// EntityKindUser is keyed by email, compared ignoring case.
	EntityKindUser EntityKind = "user"
	// EntityKindSubscriber is keyed by email, compared exactly.
	EntityKindSubscriber EntityKind = "subscriber"
)

// UniquenessCheckable is implemented by entities that carry a natural unique key.
type UniquenessCheckable interface {
	Kind() EntityKind
	UniqueKey() string
}
