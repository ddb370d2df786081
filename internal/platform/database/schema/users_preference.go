package schema

// UserPreferenceTable represents the 'users.preference' table
type UserPreferenceTable struct {
	Table              string
	AccountID          string
	Locale             string
	Timezone           string
	DateFormat         string
	EmailNotifications string
	EnrolmentAlerts    string
	WeeklyDigest       string
	UpdatedAt          string
}

// UserPreference is the schema definition for users.preference
var UserPreference = UserPreferenceTable{
	Table:              "users.preference",
	AccountID:          "accountid",
	Locale:             "locale",
	Timezone:           "timezone",
	DateFormat:         "dateformat",
	EmailNotifications: "emailnotifications",
	EnrolmentAlerts:    "enrolmentalerts",
	WeeklyDigest:       "weeklydigest",
	UpdatedAt:          "updatedat",
}

// Columns returns all standard column names
func (t UserPreferenceTable) Columns() []string {
	return []string{
		t.AccountID, t.Locale, t.Timezone, t.DateFormat,
		t.EmailNotifications, t.EnrolmentAlerts, t.WeeklyDigest, t.UpdatedAt,
	}
}
