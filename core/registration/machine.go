package registration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

// State is the machine's coarse position in the flow. Validation and
// branching happen inside Advance and are never observed from outside.
type State string

const (
	StateAwaitingInput State = "awaiting_input"
	StateSubmitting    State = "submitting"
	StateComplete      State = "complete"
	StateFailed        State = "failed"
)

// DashboardPath is where a finished or already-registered user is sent.
const DashboardPath = "/dashboard"

type EventKind string

const (
	EventBotMessage  EventKind = "bot_message"
	EventUserMessage EventKind = "user_message"
	EventRedirect    EventKind = "redirect"
	EventCompleted   EventKind = "completed"
	EventFailed      EventKind = "failed"
)

// Event is an effect produced by Advance, in the order it must be rendered.
// Delay is cosmetic: a typing pause before a bot entry, or the grace period
// before a scheduled redirect. Content never depends on it.
type Event struct {
	Kind   EventKind     `json:"kind"`
	Text   string        `json:"text,omitempty"`
	Target string        `json:"target,omitempty"`
	Delay  time.Duration `json:"delay,omitempty"`
}

type (
	// IdentityLookup answers the duplicate-email check.
	IdentityLookup interface {
		EmailExists(ctx context.Context, email string) (bool, error)
	}

	// Submitter persists a completed registration.
	Submitter interface {
		Submit(ctx context.Context, ans Answers) error
	}

	Machine struct {
		steps     []Step
		answers   Answers
		stepIdx   int
		state     State
		dupChoice bool
		failure   error
		users     IdentityLookup
		pipeline  Submitter
		delay     func() time.Duration
	}

	// Draft is a resumable snapshot of an in-progress conversation.
	Draft struct {
		StepIndex       int     `json:"step_index"`
		Answers         Answers `json:"answers"`
		DuplicateChoice bool    `json:"duplicate_choice"`
	}
)

// TypingDelay returns a randomized pause in the 800ms-1.4s band.
func TypingDelay() time.Duration {
	return 800*time.Millisecond + time.Duration(rand.Int63n(600))*time.Millisecond
}

func NewMachine(seedProjectType string, users IdentityLookup, pipeline Submitter) *Machine {
	m := &Machine{
		steps:    Steps(),
		answers:  Answers{},
		state:    StateAwaitingInput,
		users:    users,
		pipeline: pipeline,
		delay:    TypingDelay,
	}
	// a pre-selected project type skips the opening question
	if seedProjectType == "mini" || seedProjectType == "major" {
		m.answers[FieldProjectType] = seedProjectType
		m.stepIdx = 1
	}
	return m
}

func (m *Machine) State() State     { return m.state }
func (m *Machine) StepIndex() int   { return m.stepIdx }
func (m *Machine) Failure() error   { return m.failure }
func (m *Machine) Answers() Answers { return m.answers.clone() }

// Progress is the fraction of steps answered, for the client progress bar.
func (m *Machine) Progress() float64 {
	if m.state == StateComplete {
		return 1
	}
	p := float64(m.stepIdx) / float64(len(m.steps)-1)
	if p > 1 {
		p = 1
	}
	return p
}

// Options returns the fixed choice set of the current step, or the
// duplicate-email choices while that sub-mode is active.
func (m *Machine) Options() []Option {
	if m.state != StateAwaitingInput {
		return nil
	}
	if m.dupChoice {
		return []Option{
			{Label: "1️⃣  Continue to Login", Value: "1"},
			{Label: "2️⃣  Use different email", Value: "2"},
		}
	}
	return m.steps[m.stepIdx].Options
}

// Snapshot captures the resumable parts of the conversation. Terminal and
// submitting states are not snapshotted.
func (m *Machine) Snapshot() Draft {
	return Draft{
		StepIndex:       m.stepIdx,
		Answers:         m.answers.clone(),
		DuplicateChoice: m.dupChoice,
	}
}

// Restore rewinds the machine to a drafted position. Out-of-range drafts
// are ignored.
func (m *Machine) Restore(d Draft) {
	if d.StepIndex < 0 || d.StepIndex >= len(m.steps) {
		return
	}
	m.stepIdx = d.StepIndex
	m.dupChoice = d.DuplicateChoice
	m.state = StateAwaitingInput
	m.failure = nil
	m.answers = Answers{}
	for k, v := range d.Answers {
		m.answers[k] = v
	}
}

// Start emits the opening prompt.
func (m *Machine) Start() []Event {
	return []Event{m.botEvent(m.steps[m.stepIdx].Prompt(m.answers))}
}

// Advance feeds one user input through the machine and returns the effects
// to render, in order. Terminal machines ignore further input, as does a
// machine whose submission is still in flight.
func (m *Machine) Advance(ctx context.Context, raw string) []Event {
	switch m.state {
	case StateComplete, StateFailed, StateSubmitting:
		return nil
	}
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil
	}

	events := []Event{{Kind: EventUserMessage, Text: m.displayText(input)}}

	if m.dupChoice {
		return append(events, m.advanceDupChoice(input)...)
	}

	step := m.steps[m.stepIdx]
	if msg := step.Validate(input); msg != "" {
		return append(events, m.botEvent(fmt.Sprintf("⚠️ %s\n\nPlease try again.", msg)))
	}

	value := input
	switch step.Field {
	case FieldPhoneNumber:
		value = user.NormalizePhone(input)
	case FieldProblemSource:
		value = NormalizeProblemSource(input)
	case FieldProjectType:
		value = strings.ToLower(input)
	}

	if step.Field == FieldEmail {
		// best effort; a lookup failure must not strand the session
		if exists, err := m.users.EmailExists(ctx, strings.ToLower(input)); err == nil && exists {
			m.dupChoice = true
			return append(events, m.botEvent(
				"🤔 **Email already exists!**\n\nIt looks like you've already registered with this email address.\n\n"+
					"1️⃣ **Continue to Login**\n"+
					"2️⃣ **Use different email**"))
		}
	}

	m.answers[step.Field] = value

	skipFinal := step.Field == FieldProblemSource && value == SourceTeamSuggestion
	next := m.stepIdx + 1
	if next >= len(m.steps) || skipFinal {
		if skipFinal {
			m.answers[FieldProblemStatement] = TeamSuggestionStatement
		}
		return append(events, m.submit(ctx, skipFinal)...)
	}

	m.stepIdx = next
	return append(events, m.botEvent(m.steps[next].Prompt(m.answers)))
}

func (m *Machine) advanceDupChoice(input string) []Event {
	choice := strings.ToLower(input)
	if choice == "1" || strings.Contains(choice, "login") || strings.Contains(choice, "continue") {
		m.state = StateComplete
		return []Event{{Kind: EventRedirect, Target: DashboardPath}}
	}
	m.dupChoice = false
	return []Event{m.botEvent("No problem! Please enter a **different email address** to continue.")}
}

func (m *Machine) submit(ctx context.Context, teamSuggestion bool) []Event {
	m.state = StateSubmitting
	if err := m.pipeline.Submit(ctx, m.answers.clone()); err != nil {
		m.state = StateFailed
		m.failure = err
		return []Event{
			m.botEvent(fmt.Sprintf("❌ **Registration Failed**\n\n**Error:** %s\n\nPlease try again in a moment, or reach out to the team if this keeps happening.", FailureText(err))),
			{Kind: EventFailed, Text: FailureText(err)},
		}
	}

	m.state = StateComplete
	source := "Own Idea"
	if teamSuggestion {
		source = "Team Suggestion"
	}
	summary := fmt.Sprintf(
		"🎉 **Registration Complete!**\n\n"+
			"👤 **Name:** %s\n"+
			"📝 **Project:** %s Project\n"+
			"🎯 **Source:** %s\n\n"+
			"**Great choice!** Since you requested a suggestion, our development team will analyze your profile and assign the **best trending project idea** in your domain.\n\n"+
			"Redirecting you to your dashboard in 5 seconds... 🚀",
		m.answers[FieldFullName], projectTypeLabel(m.answers), source)
	return []Event{
		m.botEvent(summary),
		{Kind: EventCompleted},
		{Kind: EventRedirect, Target: DashboardPath, Delay: 5 * time.Second},
	}
}

// displayText echoes the matching option label for choice steps so the
// transcript reads like the button the user clicked.
func (m *Machine) displayText(input string) string {
	if m.dupChoice {
		return input
	}
	for _, opt := range m.steps[m.stepIdx].Options {
		if opt.Value == input {
			return opt.Label
		}
	}
	return input
}

func (m *Machine) botEvent(text string) Event {
	return Event{Kind: EventBotMessage, Text: text, Delay: m.delay()}
}
