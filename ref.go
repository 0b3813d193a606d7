package archivefile

import (
	"fmt"
	"strings"
)

// MemberRef identifies an archive entry. A ref may be the entry's name as
// a string, a Member, or a *Member. Anything else fails with
// ErrBadMemberRef.
type MemberRef = any

// memberName resolves a ref to a member name. Name strings pass through
// verbatim; lookups fall back to the slash-normalized spelling only when
// the verbatim name is not in the archive (see normalizedName).
func memberName(ref MemberRef) (string, error) {
	switch v := ref.(type) {
	case string:
		return v, nil
	case Member:
		return v.Name, nil
	case *Member:
		return v.Name, nil
	default:
		return "", fmt.Errorf("%w: expected string, Member, or *Member, got %T", ErrBadMemberRef, ref)
	}
}

// normalizedName converts backslash separators to the forward slashes
// archives store, for looking up Windows-style spellings of a member
// name. It returns "" when the name has no backslashes, since the
// verbatim lookup already covered that spelling.
func normalizedName(name string) string {
	alt := strings.ReplaceAll(name, `\`, "/")
	if alt == name {
		return ""
	}
	return alt
}

// validateMembers resolves each requested ref in order and checks it
// against the archive's member names, preferring the verbatim spelling
// and falling back to the slash-normalized one. The first unknown name
// fails the whole call with ErrMemberNotFound before any extraction side
// effect. On success the requested names come back deduplicated, first
// occurrence winning, otherwise in their original order.
func validateMembers(requested []MemberRef, available []string, archivePath string) ([]string, error) {
	known := make(map[string]struct{}, len(available))
	for _, name := range available {
		known[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(requested))
	names := make([]string, 0, len(requested))
	for _, ref := range requested {
		name, err := memberName(ref)
		if err != nil {
			return nil, opError("extract", archivePath, err)
		}
		if _, ok := known[name]; !ok {
			alt := normalizedName(name)
			if alt == "" {
				return nil, memberError("extract", archivePath, name, ErrMemberNotFound)
			}
			if _, ok := known[alt]; !ok {
				return nil, memberError("extract", archivePath, name, ErrMemberNotFound)
			}
			name = alt
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
