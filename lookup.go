package accounts

// LookupResult captures one registry's best-effort listing. A failed
// lookup carries its error but never aborts the other registry's attempt.
type LookupResult struct {
	Records []UserRecord
	Err     error
}

// OK reports whether the lookup produced usable records.
func (l LookupResult) OK() bool {
	return l.Err == nil
}

// MergeCandidates concatenates remote records followed by local records
// into one candidate sequence. A local record whose user id collides
// case-insensitively with a remote one is dropped: the registry of record
// wins when it answered.
func MergeCandidates(remote, local []UserRecord) []UserRecord {
	merged := make([]UserRecord, 0, len(remote)+len(local))
	merged = append(merged, remote...)

	for _, candidate := range local {
		shadowed := false
		for _, r := range remote {
			if SameUserID(r.UserID, candidate.UserID) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			merged = append(merged, candidate)
		}
	}

	return merged
}

// FindMatch returns the first candidate whose user id matches accountID
// case-insensitively and whose password matches exactly. This comparison
// is the only authentication check performed on the fallback path.
func FindMatch(candidates []UserRecord, accountID, password string) (UserRecord, bool) {
	for _, candidate := range candidates {
		if SameUserID(candidate.UserID, accountID) && candidate.Password == password {
			return candidate, true
		}
	}
	return UserRecord{}, false
}
