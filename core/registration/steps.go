package registration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

// Field identifies the answer slot a step writes to.
type Field string

const (
	FieldProjectType      Field = "project_type"
	FieldFullName         Field = "full_name"
	FieldEmail            Field = "email"
	FieldPhoneNumber      Field = "phone_number"
	FieldCollegeName      Field = "college_name"
	FieldCourseBranch     Field = "course_branch"
	FieldPassword         Field = "password"
	FieldProblemSource    Field = "problem_source"
	FieldProblemStatement Field = "problem_statement"
)

// Canonical problem_source tokens.
const (
	SourceOwn            = "own"
	SourceTeamSuggestion = "team_suggestion"
)

// TeamSuggestionStatement is stored in place of a problem statement when the
// user opts for a team-curated idea and the final step is skipped.
const TeamSuggestionStatement = "Requested team suggestion [User opted for team-curated project idea]"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type (
	// Answers accumulates validated field values for one session,
	// write-once per field in the normal flow.
	Answers map[Field]string

	Option struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	// Step is one prompt in the registration conversation. Prompt may
	// depend on earlier answers. Validate returns a user-facing message,
	// or "" when the input is acceptable.
	Step struct {
		Field    Field
		Prompt   func(ans Answers) string
		Validate func(input string) string
		Options  []Option
	}
)

func (ans Answers) Get(f Field) string { return ans[f] }

func (ans Answers) clone() Answers {
	out := make(Answers, len(ans))
	for k, v := range ans {
		out[k] = v
	}
	return out
}

func projectTypeLabel(ans Answers) string {
	if ans[FieldProjectType] == "major" {
		return "Major"
	}
	return "Mini"
}

func staticPrompt(text string) func(Answers) string {
	return func(Answers) string { return text }
}

func minLength(n int, msg string) func(string) string {
	return func(input string) string {
		if len(strings.TrimSpace(input)) >= n {
			return ""
		}
		return msg
	}
}

// NormalizeProblemSource maps the free-form answer to a canonical token.
// "1" and own/prefer/my variants mean an own idea; everything else that
// passed validation means a team suggestion.
func NormalizeProblemSource(input string) string {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	if cleaned == "1" ||
		strings.Contains(cleaned, "own") ||
		strings.Contains(cleaned, "prefer") ||
		strings.Contains(cleaned, "my") {
		return SourceOwn
	}
	return SourceTeamSuggestion
}

// Steps returns the ordered step table. The slice is freshly built so a
// caller cannot mutate shared state.
func Steps() []Step {
	return []Step{
		{
			Field:  FieldProjectType,
			Prompt: staticPrompt("Hello! 👋 Welcome to TechpG Project Registration!\n\nTo get started, please select the **type of project** you are registering for:"),
			Validate: func(input string) string {
				switch strings.ToLower(input) {
				case "mini", "major":
					return ""
				}
				return "Please select a valid project type."
			},
			Options: []Option{
				{Label: "🔬 Mini Project", Value: "mini"},
				{Label: "🚀 Major Project", Value: "major"},
			},
		},
		{
			Field: FieldFullName,
			Prompt: func(ans Answers) string {
				return fmt.Sprintf("Awesome! You've selected a **%s Project**.\n\nLet's continue! What is your **full name**?", projectTypeLabel(ans))
			},
			Validate: minLength(2, "Please enter a valid name (at least 2 characters)."),
		},
		{
			Field:  FieldEmail,
			Prompt: staticPrompt("Great! Now, please share your **email address** 📧"),
			Validate: func(input string) string {
				if emailRegex.MatchString(input) {
					return ""
				}
				return "Please enter a valid email address."
			},
		},
		{
			Field:  FieldPhoneNumber,
			Prompt: staticPrompt("Perfect! What's your **phone number**? 📱 (10 digits)"),
			Validate: func(input string) string {
				if user.ValidPhone(user.NormalizePhone(input)) {
					return ""
				}
				return "Please enter a valid 10-digit phone number."
			},
		},
		{
			Field:    FieldCollegeName,
			Prompt:   staticPrompt("Awesome! Which **college/institution** are you from? 🏫"),
			Validate: minLength(2, "Please enter a valid college name."),
		},
		{
			Field:    FieldCourseBranch,
			Prompt:   staticPrompt("Nice! What's your **course and branch**? (e.g., B.Tech CSE) 📚"),
			Validate: minLength(2, "Please enter a valid course/branch."),
		},
		{
			Field:  FieldPassword,
			Prompt: staticPrompt("Security check! 🔐 Please create a **password** for your dashboard access.\n\nKeep it safe - you'll need it to track your project progress and chat with us."),
			Validate: func(input string) string {
				if len(input) >= 6 {
					return ""
				}
				return "Password must be at least 6 characters long."
			},
		},
		{
			Field: FieldProblemSource,
			Prompt: func(ans Answers) string {
				return fmt.Sprintf("Almost done! 🎯\n\nHow would you like to choose your **%s Project** problem statement?\n\nType **1** or **2**:", projectTypeLabel(ans))
			},
			Validate: func(input string) string {
				cleaned := strings.ToLower(strings.TrimSpace(input))
				switch cleaned {
				case "1", "2":
					return ""
				}
				for _, kw := range []string{"own", "prefer", "my", "suggest", "team", "dev"} {
					if strings.Contains(cleaned, kw) {
						return ""
					}
				}
				return "Please type **1** for your own idea or **2** for team suggestion."
			},
			Options: []Option{
				{Label: "1️⃣  My own problem statement", Value: "1"},
				{Label: "2️⃣  Suggestion by the development team", Value: "2"},
			},
		},
		{
			Field:    FieldProblemStatement,
			Prompt:   staticPrompt("💡 Please describe your **project idea** in detail.\n\nInclude the problem you want to solve, technologies you plan to use, and any specific goals."),
			Validate: minLength(10, "Please describe your project idea in at least 10 characters."),
		},
	}
}
