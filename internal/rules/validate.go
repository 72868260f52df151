package rules

import "fmt"

// ValidateCatalog checks the descriptor identity and density invariants
// across every rule in rs: for any two descriptors, id, human_id,
// pretty_id, name, and description must all differ, and ids must form a
// dense 1-based range.
func ValidateCatalog(rs []Rule) error {
	var descs []*AchievementDescriptor
	for _, r := range rs {
		descs = append(descs, r.Descriptors()...)
	}

	seenIDs := make(map[int]bool)
	seenHuman := make(map[string]bool)
	seenPretty := make(map[string]bool)
	seenName := make(map[string]bool)
	seenDesc := make(map[string]bool)
	maxID := 0

	for _, d := range descs {
		if seenIDs[d.ID] {
			return fmt.Errorf("duplicate descriptor id %d", d.ID)
		}
		seenIDs[d.ID] = true

		pretty := d.PrettyID()
		if seenHuman[d.HumanID] {
			return fmt.Errorf("duplicate human_id %q", d.HumanID)
		}
		if seenPretty[pretty] {
			return fmt.Errorf("duplicate pretty_id %q", pretty)
		}
		if seenName[d.DisplayName] {
			return fmt.Errorf("duplicate name %q", d.DisplayName)
		}
		if seenDesc[d.Description] {
			return fmt.Errorf("duplicate description %q", d.Description)
		}
		seenHuman[d.HumanID] = true
		seenPretty[pretty] = true
		seenName[d.DisplayName] = true
		seenDesc[d.Description] = true

		if d.ID > maxID {
			maxID = d.ID
		}
	}

	for id := 1; id <= maxID; id++ {
		if !seenIDs[id] {
			return fmt.Errorf("descriptor ids are not dense: missing %d", id)
		}
	}

	return nil
}
