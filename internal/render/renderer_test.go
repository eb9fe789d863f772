package render

import (
	"testing"
	"time"

	"github.com/duedate/reminder/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := New("")

	tests := []struct {
		name string
		tpl  string
		vars Vars
		want string
	}{
		{
			name: "basic substitution",
			tpl:  "Hi {{client_name}}, due {{deadline}}",
			vars: Vars{"client_name": "Acme", "deadline": "2024-01-10"},
			want: "Hi Acme, due 2024-01-10",
		},
		{
			name: "every occurrence replaced",
			tpl:  "{{client_name}} / {{client_name}} / {{ client_name }}",
			vars: Vars{"client_name": "Acme"},
			want: "Acme / Acme / Acme",
		},
		{
			name: "unrecognized placeholder left verbatim",
			tpl:  "Dear {{client_name}}, ref {{invoice_no}} and {{ spaced_out }}",
			vars: Vars{"client_name": "Acme"},
			want: "Dear Acme, ref {{invoice_no}} and {{ spaced_out }}",
		},
		{
			name: "no placeholders is identity",
			tpl:  "<p>Plain {body} with {single} braces and }} strays {{</p>",
			vars: Vars{"client_name": "Acme"},
			want: "<p>Plain {body} with {single} braces and }} strays {{</p>",
		},
		{
			name: "empty value substitutes empty",
			tpl:  "[{{middle_name}}]",
			vars: Vars{"middle_name": ""},
			want: "[]",
		},
		{
			name: "values are not re-expanded",
			tpl:  "{{client_name}}",
			vars: Vars{"client_name": "{{deadline}}", "deadline": "x"},
			want: "{{deadline}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.tpl, tt.vars))
		})
	}
}

func TestRender_IdempotentWithoutRecognizedPlaceholders(t *testing.T) {
	r := New("")
	tpl := "Reminder {{unknown}} for {{ also_unknown }}"
	once := r.Render(tpl, Vars{"client_name": "Acme"})
	assert.Equal(t, tpl, once)
	assert.Equal(t, once, r.Render(once, Vars{"client_name": "Acme"}))
}

func TestVarsFor(t *testing.T) {
	r := New("02 Jan 2006")
	clientID := int64(5)
	today := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	reminder := model.Reminder{
		ID:       11,
		Deadline: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ClientID: &clientID,
		Type: model.ReminderType{
			Name:     "GST filing",
			Template: model.EmailTemplate{Name: "gst"},
		},
	}
	client := model.Client{ID: 5, FirstName: "Asha", LastName: "Rao", CompanyName: "Acme", Email: "asha@acme.test"}

	vars := r.VarsFor(reminder, client, today)

	assert.Equal(t, "Asha Rao", vars[VarClientName])
	assert.Equal(t, "10 Jan 2024", vars[VarDeadline])
	assert.Equal(t, "GST filing", vars[VarReminderType])
	assert.Equal(t, "7", vars[VarDaysUntilDeadline])
	assert.Equal(t, "Acme", vars[VarCompanyName])
	assert.Equal(t, "11", vars[VarReminderID])
	assert.Equal(t, "gst", vars[VarTemplateName])

	out := r.Render("{{client_name}}: {{reminder_type}} due {{deadline}} ({{days_until_deadline}} days)", vars)
	assert.Equal(t, "Asha Rao: GST filing due 10 Jan 2024 (7 days)", out)
}

func TestPlaceholdersAndUndeclared(t *testing.T) {
	tpl := model.EmailTemplate{
		Subject:        "{{reminder_type}} due {{deadline}}",
		Body:           "Hi {{client_name}}, {{ deadline }} is in {{days_until_deadline}} days",
		DataReferences: []string{"client_name", "deadline"},
	}

	assert.Equal(t,
		[]string{"client_name", "days_until_deadline", "deadline", "reminder_type"},
		Placeholders(tpl.Subject+tpl.Body))
	assert.Equal(t, []string{"days_until_deadline", "reminder_type"}, Undeclared(tpl))
	assert.Empty(t, Placeholders("no placeholders here"))
}
