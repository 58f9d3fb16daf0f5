package shared

// Diff computes the minimal delta turning the persisted set into the desired
// set, matching elements by key. Persisted elements whose key is absent from
// the desired set end up in toDelete, desired elements whose key is absent
// from the persisted set end up in toAdd. Elements present on both sides are
// left out entirely so reconciliation never rewrites an unchanged row.
// Duplicate keys in the desired set are collapsed to a single toAdd entry.
func Diff[E any, T any, K comparable](existing []E, desired []T, existingKey func(E) K, desiredKey func(T) K) (toDelete []E, toAdd []T) {
	desiredKeys := make(map[K]struct{}, len(desired))
	for _, d := range desired {
		desiredKeys[desiredKey(d)] = struct{}{}
	}

	existingKeys := make(map[K]struct{}, len(existing))
	for _, e := range existing {
		k := existingKey(e)
		existingKeys[k] = struct{}{}
		if _, ok := desiredKeys[k]; !ok {
			toDelete = append(toDelete, e)
		}
	}

	added := make(map[K]struct{})
	for _, d := range desired {
		k := desiredKey(d)
		if _, ok := existingKeys[k]; ok {
			continue
		}
		if _, ok := added[k]; ok {
			continue
		}
		added[k] = struct{}{}
		toAdd = append(toAdd, d)
	}

	return toDelete, toAdd
}
