// Package render substitutes {{name}} placeholders in reminder templates.
//
// Rendering is lenient: a placeholder whose name has no value is left in the
// output exactly as written.
package render

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/duedate/reminder/internal/model"
)

// Placeholder names understood by every reminder template
const (
	VarClientName        = "client_name"
	VarDeadline          = "deadline"
	VarReminderType      = "reminder_type"
	VarDaysUntilDeadline = "days_until_deadline"
	VarFirstName         = "first_name"
	VarMiddleName        = "middle_name"
	VarLastName          = "last_name"
	VarCompanyName       = "company_name"
	VarCompanyType       = "company_type"
	VarEmail             = "email"
	VarGSTNo             = "gst_no"
	VarAddress           = "address"
	VarReminderID        = "reminder_id"
	VarTemplateName      = "template_name"
)

// DefaultDateLayout formats {{deadline}}
const DefaultDateLayout = "2006-01-02"

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Vars maps placeholder names to their values
type Vars map[string]string

// Renderer renders reminder subjects and bodies
type Renderer struct {
	dateLayout string
}

// New creates a Renderer formatting dates with layout
func New(dateLayout string) *Renderer {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Renderer{dateLayout: dateLayout}
}

// Render replaces every recognized placeholder in tpl
func (r *Renderer) Render(tpl string, vars Vars) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// VarsFor builds the variables for one (reminder, recipient) pair
func (r *Renderer) VarsFor(reminder model.Reminder, client model.Client, today time.Time) Vars {
	return Vars{
		VarClientName:        client.DisplayName(),
		VarDeadline:          reminder.Deadline.Format(r.dateLayout),
		VarReminderType:      reminder.Type.Name,
		VarDaysUntilDeadline: strconv.Itoa(reminder.DaysUntilDeadline(today)),
		VarFirstName:         client.FirstName,
		VarMiddleName:        client.MiddleName,
		VarLastName:          client.LastName,
		VarCompanyName:       client.CompanyName,
		VarCompanyType:       client.CompanyType,
		VarEmail:             client.Email,
		VarGSTNo:             client.GSTNo,
		VarAddress:           client.Address,
		VarReminderID:        strconv.FormatInt(reminder.ID, 10),
		VarTemplateName:      reminder.Type.Template.Name,
	}
}

// Placeholders lists the distinct placeholder names used in tpl, sorted
func Placeholders(tpl string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Undeclared returns placeholders used in the template that are missing from
// its declared data references
func Undeclared(t model.EmailTemplate) []string {
	declared := make(map[string]bool, len(t.DataReferences))
	for _, d := range t.DataReferences {
		declared[d] = true
	}
	var missing []string
	for _, name := range Placeholders(t.Subject + "\n" + t.Body) {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
