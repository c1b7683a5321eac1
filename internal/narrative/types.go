package narrative

import "time"

type Story struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Storyline struct {
	ID             string `json:"id"`
	StoryID        string `json:"storyId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	StarterEventID string `json:"starterEventId,omitempty"`
}

// Event is one story beat: a node in the storyline graph. Option order is
// load-bearing; an option is addressed by its index in Options.
type Event struct {
	ID           string         `json:"id"`
	StorylineID  string         `json:"storylineId"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Options      []Option       `json:"options"`
	IsStarter    bool           `json:"isStarter"`
	Requirements map[string]any `json:"triggerRequirements,omitempty"`
	Position     Position       `json:"position"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Option is one player-facing choice. When SkillCheck is set the option is
// in skill-check mode and every target carries a success/failure tag;
// otherwise every target carries a probability weight. The two modes never
// mix within one target list.
type Option struct {
	Text       string      `json:"text"`
	Targets    []Target    `json:"targets"`
	SkillCheck *SkillCheck `json:"skillCheck"`
	Effects    []Effect    `json:"effects"`
}

// Target is one outgoing edge from an option to a destination event.
type Target struct {
	EventID             string  `json:"eventId"`
	Probability         float64 `json:"probability"`
	IsSkillCheckOutcome bool    `json:"isSkillCheckOutcome,omitempty"`
	IsSuccess           bool    `json:"isSuccess,omitempty"`
}

type SkillCheck struct {
	Skill    string `json:"skill"`
	MinValue int    `json:"minValue"`
}

// Effect adjusts a player skill when the option is chosen. Value is bounded
// to [-100, 100]; interpretation is up to the runtime playing the story.
type Effect struct {
	Skill string `json:"skill"`
	Value int    `json:"value"`
}

const (
	EffectValueMin = -100
	EffectValueMax = 100
)

// HasSkillCheck reports whether the option branches on a skill check.
func (o *Option) HasSkillCheck() bool {
	return o.SkillCheck != nil
}

// TargetIndex returns the position of the first target pointing at eventID,
// or -1. For skill-check options the success flag must match as well.
func (o *Option) TargetIndex(eventID string, isSuccess bool) int {
	for i, target := range o.Targets {
		if target.EventID != eventID {
			continue
		}
		if target.IsSkillCheckOutcome && target.IsSuccess != isSuccess {
			continue
		}
		return i
	}
	return -1
}

// HasTarget reports whether any target points at eventID, regardless of mode.
func (o *Option) HasTarget(eventID string) bool {
	for _, target := range o.Targets {
		if target.EventID == eventID {
			return true
		}
	}
	return false
}

// SuccessTargets returns the event ids of the success outcomes, in order.
func (o *Option) SuccessTargets() []string {
	return o.outcomeTargets(true)
}

// FailureTargets returns the event ids of the failure outcomes, in order.
func (o *Option) FailureTargets() []string {
	return o.outcomeTargets(false)
}

func (o *Option) outcomeTargets(success bool) []string {
	var ids []string
	for _, target := range o.Targets {
		if target.IsSkillCheckOutcome && target.IsSuccess == success {
			ids = append(ids, target.EventID)
		}
	}
	return ids
}

func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Options = CloneOptions(e.Options)
	if e.Requirements != nil {
		clone.Requirements = make(map[string]any, len(e.Requirements))
		for key, value := range e.Requirements {
			clone.Requirements[key] = value
		}
	}
	return &clone
}

func CloneOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	cloned := make([]Option, len(options))
	for i, option := range options {
		cloned[i] = option
		cloned[i].Targets = append([]Target(nil), option.Targets...)
		cloned[i].Effects = append([]Effect(nil), option.Effects...)
		if option.SkillCheck != nil {
			check := *option.SkillCheck
			cloned[i].SkillCheck = &check
		}
	}
	return cloned
}
