package catalog

// AuthorSelector decides which author-style label to use for a user out of a
// genre's pool. The pool is never empty when Select is called.
type AuthorSelector interface {
	Select(userID string, authors []string) string
}

// FirstAuthor always picks the first author of the pool. This is the default
// selection strategy.
type FirstAuthor struct{}

func (FirstAuthor) Select(_ string, authors []string) string {
	return authors[0]
}

// PreferenceReader exposes the stored author preferences of a user.
type PreferenceReader interface {
	PreferredAuthors(userID string) ([]string, error)
}

// PreferredAuthor picks the first author of the pool that the user has marked
// as preferred, falling back to the first pool entry when the user has no
// usable preference or the lookup fails.
type PreferredAuthor struct {
	Prefs PreferenceReader
}

func (s PreferredAuthor) Select(userID string, authors []string) string {
	preferred, err := s.Prefs.PreferredAuthors(userID)
	if err != nil || len(preferred) == 0 {
		return authors[0]
	}
	for _, want := range preferred {
		for _, author := range authors {
			if author == want {
				return author
			}
		}
	}
	return authors[0]
}
