// internal/template/render.go
package template

import "strings"

// Vars holds the resolved values for one recipient. Keys are the
// declared variable names without braces.
type Vars map[string]string

// Render substitutes every declared variable into body. A variable
// with no value in vars, or a placeholder never declared, stays as
// literal {{placeholder}} text. Pure function, never errors.
func Render(body string, declared []string, vars Vars) string {
	result := body
	for _, name := range declared {
		v, ok := vars[name]
		if !ok {
			continue
		}
		result = strings.ReplaceAll(result, "{{"+name+"}}", v)
	}
	return result
}

// RenderEmail renders the subject and HTML body for t.
func (t Template) RenderEmail(vars Vars) (subject, body string) {
	return Render(t.EmailSubject, t.Variables, vars),
		Render(t.EmailBody, t.Variables, vars)
}

// RenderSMS renders the SMS body for t.
func (t Template) RenderSMS(vars Vars) string {
	return Render(t.SMSBody, t.Variables, vars)
}
