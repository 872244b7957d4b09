package auth

import "context"

// SessionAuth resolves server-side session tokens that never expire. A
// session lives until DestroySession or RevokeSubject removes it.
type SessionAuth struct {
	*sessionCore
}

func NewSession(cfg Config) (*SessionAuth, error) {
	core, err := newSessionCore(cfg)
	if err != nil {
		return nil, err
	}
	return &SessionAuth{sessionCore: core}, nil
}

func (*SessionAuth) Kind() Kind { return KindSession }

func (s *SessionAuth) ResolvePrincipal(ctx context.Context, c Credential) (Principal, bool) {
	rec, ok := s.lookup(ctx, c)
	if !ok {
		return Principal{}, false
	}
	return s.resolve.bySubjectID(ctx, rec.SubjectID)
}
