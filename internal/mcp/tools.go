package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"eventflow/internal/export"
	"eventflow/internal/graph"
	"eventflow/internal/narrative"
	"eventflow/internal/validate"
)

type ListEventsInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline to list"`
}

type GetEventInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string `json:"eventId" jsonschema:"event id"`
}

type CreateEventInput struct {
	StorylineID string  `json:"storylineId" jsonschema:"storyline to add the event to"`
	Title       string  `json:"title,omitempty" jsonschema:"event title"`
	Content     string  `json:"content,omitempty" jsonschema:"event body text"`
	X           float64 `json:"x,omitempty" jsonschema:"canvas x position"`
	Y           float64 `json:"y,omitempty" jsonschema:"canvas y position"`
}

type DeleteEventInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string `json:"eventId" jsonschema:"event to delete"`
}

type SetStarterInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string `json:"eventId" jsonschema:"event to flag as the entry point"`
}

type AddOptionInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string `json:"eventId" jsonschema:"event to add a choice to"`
}

type ConnectInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding both events"`
	EventID     string `json:"eventId" jsonschema:"source event"`
	Option      int    `json:"option" jsonschema:"option index on the source event"`
	TargetID    string `json:"targetId" jsonschema:"destination event"`
	Kind        string `json:"kind,omitempty" jsonschema:"plain, skillSuccess, or skillFailure"`
}

type SetSkillCheckInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string `json:"eventId" jsonschema:"event holding the option"`
	Option      int    `json:"option" jsonschema:"option index"`
	Skill       string `json:"skill" jsonschema:"skill the check rolls against"`
	MinValue    int    `json:"minValue" jsonschema:"minimum skill value to succeed"`
}

type SetEffectsInput struct {
	StorylineID string             `json:"storylineId" jsonschema:"storyline holding the event"`
	EventID     string             `json:"eventId" jsonschema:"event holding the option"`
	Option      int                `json:"option" jsonschema:"option index"`
	Effects     []narrative.Effect `json:"effects" jsonschema:"skill adjustments applied on pick"`
}

type ExportStorylineInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline to export"`
}

type ValidateStorylineInput struct {
	StorylineID string `json:"storylineId" jsonschema:"storyline to audit"`
}

type EventSummaryOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	IsStarter bool   `json:"isStarter"`
	Options   int    `json:"options"`
}

type ListEventsOutput struct {
	Events []EventSummaryOutput `json:"events"`
}

type EventOutput struct {
	Event *narrative.Event `json:"event"`
}

type MutationOutput struct {
	Event *narrative.Event `json:"event"`
}

type DeleteEventOutput struct {
	Deleted string `json:"deleted"`
}

type ExportStorylineOutput struct {
	Filename string `json:"filename"`
	Document string `json:"document"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	EventID  string `json:"eventId,omitempty"`
	Option   int    `json:"option"`
}

type ValidateStorylineOutput struct {
	Issues []IssueOutput `json:"issues"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_events",
		Description: "List the events of a storyline",
	}, s.handleListEvents)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_event",
		Description: "Retrieve one event with its options and targets",
	}, s.handleGetEvent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_event",
		Description: "Create a new event in a storyline",
	}, s.handleCreateEvent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_event",
		Description: "Delete an event and scrub edges pointing at it",
	}, s.handleDeleteEvent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_starter",
		Description: "Flag an event as the storyline entry point",
	}, s.handleSetStarter)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_option",
		Description: "Add a choice to an event",
	}, s.handleAddOption)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "connect_option",
		Description: "Wire an option to a destination event",
	}, s.handleConnect)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "disconnect_option",
		Description: "Remove the edge from an option to a destination event",
	}, s.handleDisconnect)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_skill_check",
		Description: "Put an option into skill-check mode",
	}, s.handleSetSkillCheck)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_effects",
		Description: "Set the skill effects an option applies when picked",
	}, s.handleSetEffects)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "export_storyline",
		Description: "Export a storyline as a portable JSON document",
	}, s.handleExportStoryline)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_storyline",
		Description: "Audit a storyline for broken graph invariants",
	}, s.handleValidateStoryline)
}

func (s *Server) load(ctx context.Context, storylineID string) (*graph.Model, error) {
	if storylineID == "" {
		return nil, fmt.Errorf("storylineId is required")
	}
	return s.engine.LoadModel(ctx, storylineID)
}

func (s *Server) handleListEvents(ctx context.Context, req *sdk.CallToolRequest, input ListEventsInput) (*sdk.CallToolResult, ListEventsOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, ListEventsOutput{}, err
	}

	output := make([]EventSummaryOutput, 0, m.Len())
	for _, event := range m.Events() {
		output = append(output, EventSummaryOutput{
			ID:        event.ID,
			Title:     event.Title,
			IsStarter: event.IsStarter,
			Options:   len(event.Options),
		})
	}
	return nil, ListEventsOutput{Events: output}, nil
}

func (s *Server) handleGetEvent(ctx context.Context, req *sdk.CallToolRequest, input GetEventInput) (*sdk.CallToolResult, EventOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, EventOutput{}, err
	}
	event := m.Event(input.EventID)
	if event == nil {
		return nil, EventOutput{}, fmt.Errorf("event not found")
	}
	return nil, EventOutput{Event: event}, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, req *sdk.CallToolRequest, input CreateEventInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	event, err := s.engine.CreateEvent(ctx, m, graph.EventSeed{
		Title:    input.Title,
		Content:  input.Content,
		Position: narrative.Position{X: input.X, Y: input.Y},
	})
	if err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: event}, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, req *sdk.CallToolRequest, input DeleteEventInput) (*sdk.CallToolResult, DeleteEventOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, DeleteEventOutput{}, err
	}
	if err := s.engine.DeleteEvent(ctx, m, input.EventID); err != nil {
		return nil, DeleteEventOutput{}, err
	}
	return nil, DeleteEventOutput{Deleted: input.EventID}, nil
}

func (s *Server) handleSetStarter(ctx context.Context, req *sdk.CallToolRequest, input SetStarterInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if err := s.engine.SetStarter(ctx, m, input.EventID); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleAddOption(ctx context.Context, req *sdk.CallToolRequest, input AddOptionInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if _, err := s.engine.AddOption(ctx, m, input.EventID); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleConnect(ctx context.Context, req *sdk.CallToolRequest, input ConnectInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if _, err := s.engine.Connect(ctx, m, input.EventID, input.Option, input.TargetID, kind); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleDisconnect(ctx context.Context, req *sdk.CallToolRequest, input ConnectInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if _, err := s.engine.Disconnect(ctx, m, input.EventID, input.Option, input.TargetID, kind); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleSetSkillCheck(ctx context.Context, req *sdk.CallToolRequest, input SetSkillCheckInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	check := narrative.SkillCheck{Skill: input.Skill, MinValue: input.MinValue}
	if err := s.engine.SetSkillCheck(ctx, m, input.EventID, input.Option, check); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleSetEffects(ctx context.Context, req *sdk.CallToolRequest, input SetEffectsInput) (*sdk.CallToolResult, MutationOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if err := s.engine.SetEffects(ctx, m, input.EventID, input.Option, input.Effects); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{Event: m.Event(input.EventID)}, nil
}

func (s *Server) handleExportStoryline(ctx context.Context, req *sdk.CallToolRequest, input ExportStorylineInput) (*sdk.CallToolResult, ExportStorylineOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, ExportStorylineOutput{}, err
	}
	document, err := export.Marshal(m.Events())
	if err != nil {
		return nil, ExportStorylineOutput{}, err
	}
	return nil, ExportStorylineOutput{
		Filename: export.Filename(input.StorylineID),
		Document: string(document),
	}, nil
}

func (s *Server) handleValidateStoryline(ctx context.Context, req *sdk.CallToolRequest, input ValidateStorylineInput) (*sdk.CallToolResult, ValidateStorylineOutput, error) {
	m, err := s.load(ctx, input.StorylineID)
	if err != nil {
		return nil, ValidateStorylineOutput{}, err
	}

	report := validate.Run(m)
	output := make([]IssueOutput, 0, len(report.Issues))
	for _, issue := range report.Issues {
		output = append(output, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			EventID:  issue.EventID,
			Option:   issue.Option,
		})
	}
	return nil, ValidateStorylineOutput{Issues: output}, nil
}

func parseKind(s string) (graph.LinkKind, error) {
	if s == "" {
		return graph.LinkPlain, nil
	}
	return graph.ParseLinkKind(s)
}
