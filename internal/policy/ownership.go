package policy

// Owned is anything with a single authoring user.
type Owned interface {
	AuthorUserID() uint
}

// IsOwner reports whether requesterID authored entity. Anonymous requesters
// own nothing.
func IsOwner(entity Owned, requesterID uint) bool {
	if entity == nil || requesterID == Anonymous {
		return false
	}
	return entity.AuthorUserID() == requesterID
}
