package export

import (
	"context"
	"fmt"
	"math"
	"testing"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func TestParseLegacyDocuments(t *testing.T) {
	t.Run("bare string options with positional links", func(t *testing.T) {
		doc := []byte(`[
			{"id": "e1", "options": ["Go"], "links": ["e2"]},
			{"id": "e2", "options": []}
		]`)
		events, err := Parse(doc)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		targets := events[0].Options[0].Targets
		if len(targets) != 1 || targets[0].EventID != "e2" || targets[0].Probability != 1 {
			t.Fatalf("links not paired with options: %+v", targets)
		}
	})

	t.Run("legacy nextEventId options", func(t *testing.T) {
		doc := []byte(`[
			{"id": "e1", "options": [{"text": "Enter", "nextEventId": "e2"}]},
			{"id": "e2", "options": []}
		]`)
		events, err := Parse(doc)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		targets := events[0].Options[0].Targets
		if len(targets) != 1 || targets[0].EventID != "e2" {
			t.Fatalf("nextEventId not converted: %+v", targets)
		}
	})

	t.Run("probability form without probabilities gets even weights", func(t *testing.T) {
		doc := []byte(`[
			{"id": "e1", "options": [{"text": "Pick", "optionTargets": ["e2", "e3"]}]},
			{"id": "e2", "options": []},
			{"id": "e3", "options": []}
		]`)
		events, err := Parse(doc)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		targets := events[0].Options[0].Targets
		for i, target := range targets {
			if math.Abs(target.Probability-0.5) > narrative.SumTolerance {
				t.Fatalf("target %d: expected 0.5, got %v", i, target.Probability)
			}
		}
	})
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not an array", `{"id": "e1"}`},
		{"record not an object", `[42]`},
		{"record without id", `[{"options": []}]`},
		{"unrecognizable option", `[{"id": "e1", "options": [{"foo": 1}]}]`},
		{"numeric option", `[{"id": "e1", "options": [7]}]`},
		{"probability length mismatch", `[{"id": "e1", "options": [{"text": "x", "optionTargets": ["a", "b"], "optionProbabilities": [1]}]}]`},
		{"skill targets without check", `[{"id": "e1", "options": [{"text": "x", "successTargets": ["a"]}]}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !IsFormat(err) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}

type applyStore struct {
	store.Store

	added      []*narrative.Event
	storylines map[string]*narrative.Storyline
	failAddID  string
}

func (s *applyStore) AddEvent(ctx context.Context, event *narrative.Event) error {
	if s.failAddID != "" && event.Title == s.failAddID {
		return fmt.Errorf("disk full")
	}
	s.added = append(s.added, event.Clone())
	return nil
}

func (s *applyStore) UpdateStoryline(ctx context.Context, storyline *narrative.Storyline) error {
	copied := *storyline
	s.storylines[storyline.ID] = &copied
	return nil
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	doc := []byte(`[
		{"id": "e1", "isStarter": true, "title": "Start", "options": [{"text": "On", "optionTargets": ["e2"], "optionProbabilities": [1]}]},
		{"id": "e2", "title": "End", "options": []}
	]`)
	events, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	db := &applyStore{storylines: make(map[string]*narrative.Storyline)}
	storyline := &narrative.Storyline{ID: "sl1"}
	result, err := Apply(ctx, db, storyline, events)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Created != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Document ids are never reused.
	for _, event := range db.added {
		if event.ID == "e1" || event.ID == "e2" {
			t.Fatalf("imported id reused verbatim: %s", event.ID)
		}
	}
	// Targets follow the events to their fresh ids.
	if got := db.added[0].Options[0].Targets[0].EventID; got != result.IDMap["e2"] {
		t.Fatalf("target not remapped: %s", got)
	}
	// The imported starter was accepted and the pointer follows.
	if !db.added[0].IsStarter {
		t.Fatalf("imported starter flag dropped")
	}
	if storyline.StarterEventID != result.IDMap["e1"] {
		t.Fatalf("storyline pointer not updated: %q", storyline.StarterEventID)
	}
}

func TestApply_ExistingStarterWins(t *testing.T) {
	ctx := context.Background()
	events, err := Parse([]byte(`[{"id": "e1", "isStarter": true, "options": []}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	db := &applyStore{storylines: make(map[string]*narrative.Storyline)}
	storyline := &narrative.Storyline{ID: "sl1", StarterEventID: "existing"}
	if _, err := Apply(ctx, db, storyline, events); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if db.added[0].IsStarter {
		t.Fatalf("imported starter must not displace the existing one")
	}
	if storyline.StarterEventID != "existing" {
		t.Fatalf("storyline pointer changed: %q", storyline.StarterEventID)
	}
}

func TestApply_PartialFailure(t *testing.T) {
	ctx := context.Background()
	events, err := Parse([]byte(`[
		{"id": "e1", "title": "ok", "options": []},
		{"id": "e2", "title": "boom", "options": []},
		{"id": "e3", "title": "also ok", "options": []}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	db := &applyStore{storylines: make(map[string]*narrative.Storyline), failAddID: "boom"}
	result, err := Apply(ctx, db, &narrative.Storyline{ID: "sl1"}, events)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("expected 2 created, got %d", result.Created)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one reported failure, got %v", result.Errors)
	}
}

func TestApply_DuplicateDocumentID(t *testing.T) {
	events := []ImportedEvent{{ID: "e1"}, {ID: "e1"}}
	db := &applyStore{storylines: make(map[string]*narrative.Storyline)}
	_, err := Apply(context.Background(), db, &narrative.Storyline{ID: "sl1"}, events)
	if !IsFormat(err) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestApply_DropsTargetsOutsideDocument(t *testing.T) {
	events, err := Parse([]byte(`[
		{"id": "e1", "options": [{"text": "x", "optionTargets": ["e2", "ghost"], "optionProbabilities": [0.5, 0.5]}]},
		{"id": "e2", "options": []}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	db := &applyStore{storylines: make(map[string]*narrative.Storyline)}
	result, err := Apply(context.Background(), db, &narrative.Storyline{ID: "sl1"}, events)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	targets := db.added[0].Options[0].Targets
	if len(targets) != 1 {
		t.Fatalf("dangling target kept: %+v", targets)
	}
	if math.Abs(targets[0].Probability-1) > narrative.SumTolerance {
		t.Fatalf("survivor not renormalized: %v", targets[0].Probability)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("dropped target not reported: %v", result.Errors)
	}
}
