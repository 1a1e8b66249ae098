package conversation

// AllowList is the static set of users allowed to open a conversation.
type AllowList map[int64]struct{}

// NewAllowList builds an allow-list from user ids. An empty list admits nobody.
func NewAllowList(ids []int64) AllowList {
	l := make(AllowList, len(ids))
	for _, id := range ids {
		l[id] = struct{}{}
	}
	return l
}

// Contains reports whether userID is allowed.
func (l AllowList) Contains(userID int64) bool {
	_, ok := l[userID]
	return ok
}
