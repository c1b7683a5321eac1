package graph

// OptionSummary is the read-only view the renderer uses to draw an
// option's handle: whether it is wired, to how many events, and whether it
// branches on a skill check. Derived, never authoritative.
type OptionSummary struct {
	Index       int
	Text        string
	Connected   bool
	TargetCount int
	SkillCheck  bool
}

// ConnectionSummaries describes every option of an event, in option order.
// Unknown event ids yield nil.
func (m *Model) ConnectionSummaries(eventID string) []OptionSummary {
	event := m.Event(eventID)
	if event == nil {
		return nil
	}
	summaries := make([]OptionSummary, len(event.Options))
	for i, option := range event.Options {
		summaries[i] = OptionSummary{
			Index:       i,
			Text:        option.Text,
			Connected:   len(option.Targets) > 0,
			TargetCount: len(option.Targets),
			SkillCheck:  option.HasSkillCheck(),
		}
	}
	return summaries
}

// Reachable walks option targets breadth-first from the given event and
// returns every event id reachable from it, itself included, in visit
// order.
func (m *Model) Reachable(fromID string) []string {
	if m.Event(fromID) == nil {
		return nil
	}
	seen := map[string]bool{fromID: true}
	order := []string{fromID}
	for cursor := 0; cursor < len(order); cursor++ {
		event := m.Event(order[cursor])
		if event == nil {
			continue
		}
		for _, option := range event.Options {
			for _, target := range option.Targets {
				if seen[target.EventID] || m.Event(target.EventID) == nil {
					continue
				}
				seen[target.EventID] = true
				order = append(order, target.EventID)
			}
		}
	}
	return order
}

// Orphans returns the ids of events the starter cannot reach. Without a
// starter every event is an orphan.
func (m *Model) Orphans() []string {
	starter := m.Starter()
	reachable := map[string]bool{}
	if starter != nil {
		for _, id := range m.Reachable(starter.ID) {
			reachable[id] = true
		}
	}
	var orphans []string
	for _, event := range m.Events() {
		if !reachable[event.ID] {
			orphans = append(orphans, event.ID)
		}
	}
	return orphans
}
