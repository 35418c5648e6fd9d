// internal/template/registry.go
package template

// Template is one named message with an email and an SMS rendering.
// Bodies use {{variable}} placeholders; every placeholder a body uses
// must appear in Variables.
type Template struct {
	Type         string
	Name         string
	Description  string
	EmailSubject string
	EmailBody    string
	SMSBody      string
	Variables    []string
}

const (
	TypeBoothAssignment      = "booth_assignment"
	TypeInterviewReminder    = "interview_reminder"
	TypeRegistrationApproved = "registration_approved"
	TypeEventCheckin         = "event_checkin"
	TypeCustom               = "custom"
)

// registry is the fixed in-process template table. Read-only.
var registry = map[string]Template{
	TypeBoothAssignment: {
		Type:         TypeBoothAssignment,
		Name:         "Booth Assignment",
		Description:  "Sent when a job seeker is scheduled into an interview slot",
		EmailSubject: "Your interview at {{companyName}} is scheduled",
		EmailBody: "<p>Hi {{recipientName}},</p>" +
			"<p>You have been scheduled for an interview with <strong>{{companyName}}</strong> " +
			"at booth {{boothNumber}} ({{boothLocation}}) on {{interviewDate}} at {{interviewTime}}.</p>" +
			"<p>Your check-in PIN is <strong>{{pin}}</strong>. Please present it at the security desk.</p>",
		SMSBody: "Hi {{recipientName}}, your interview with {{companyName}} is on {{interviewDate}} " +
			"at {{interviewTime}}, booth {{boothNumber}}. Check-in PIN: {{pin}}",
		Variables: []string{
			"recipientName", "companyName", "boothNumber", "boothLocation",
			"interviewDate", "interviewTime", "pin",
		},
	},
	TypeInterviewReminder: {
		Type:         TypeInterviewReminder,
		Name:         "Interview Reminder",
		Description:  "Reminder sent ahead of a scheduled interview",
		EmailSubject: "Reminder: interview with {{companyName}} on {{interviewDate}}",
		EmailBody: "<p>Hi {{recipientName}},</p>" +
			"<p>This is a reminder of your interview with {{companyName}} at booth {{boothNumber}} " +
			"on {{interviewDate}} at {{interviewTime}}. Bring your check-in PIN {{pin}}.</p>",
		SMSBody: "Reminder: interview with {{companyName}} on {{interviewDate}} at {{interviewTime}}, " +
			"booth {{boothNumber}}. PIN: {{pin}}",
		Variables: []string{
			"recipientName", "companyName", "boothNumber",
			"interviewDate", "interviewTime", "pin",
		},
	},
	TypeRegistrationApproved: {
		Type:         TypeRegistrationApproved,
		Name:         "Registration Approved",
		Description:  "Sent once a job seeker registration is approved",
		EmailSubject: "Your registration for {{eventName}} is approved",
		EmailBody: "<p>Hi {{recipientName}},</p>" +
			"<p>Your registration for {{eventName}} has been approved. " +
			"Your check-in PIN is <strong>{{pin}}</strong>.</p>",
		SMSBody:   "Hi {{recipientName}}, your {{eventName}} registration is approved. PIN: {{pin}}",
		Variables: []string{"recipientName", "eventName", "pin"},
	},
	TypeEventCheckin: {
		Type:         TypeEventCheckin,
		Name:         "Event Check-in PIN",
		Description:  "Re-sends the security check-in PIN",
		EmailSubject: "Your {{eventName}} check-in PIN",
		EmailBody: "<p>Hi {{recipientName}},</p>" +
			"<p>Your check-in PIN for {{eventName}} is <strong>{{pin}}</strong>.</p>",
		SMSBody:   "{{eventName}} check-in PIN for {{recipientName}}: {{pin}}",
		Variables: []string{"recipientName", "eventName", "pin"},
	},
	TypeCustom: {
		Type:        TypeCustom,
		Name:        "Custom Message",
		Description: "Free-form message; body supplied on the campaign",
		EmailBody:   "{{message}}",
		SMSBody:     "{{message}}",
		Variables:   []string{"recipientName", "message"},
	},
}

// Get returns the template for a type key. Callers must guard the
// ok result before rendering.
func Get(typeKey string) (Template, bool) {
	t, ok := registry[typeKey]
	return t, ok
}

// Types lists the registered template type keys.
func Types() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	return keys
}
