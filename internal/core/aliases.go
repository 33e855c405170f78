package core

import "github.com/cssbattle/championship/internal/sheet"

// PlayerFieldSpecs lists the canonical player fields in template column
// order with the header spellings accepted for each.
var PlayerFieldSpecs = []FieldSpec{
	{
		Field:    FieldFullName,
		Aliases:  []string{"full_name", "FullName", "Full Name", "name", "Name"},
		Required: true,
	},
	{
		Field:    FieldEmail,
		Aliases:  []string{"email", "Email", "EMAIL", "email_address", "Email Address"},
		Required: true,
	},
	{
		Field:    FieldGroupName,
		Aliases:  []string{"group_name", "GroupName", "Group Name", "group", "Group"},
		Required: true,
	},
	{
		Field:   FieldPhone,
		Aliases: []string{"phone", "Phone", "phone_number", "PhoneNumber", "Phone Number"},
	},
	{
		Field:   FieldProfileLink,
		Aliases: []string{"cssbattle_profile_link", "CSSBattleProfileLink", "CSS Battle Profile Link", "css_link", "CSSLink"},
	},
	{
		Field:   FieldVerified,
		Aliases: []string{"verified_ofppt", "VerifiedOfppt", "Verified OFPPT", "verified", "Verified"},
	},
}

// resolveAlias returns the value of the first alias whose cell is truthy.
// Blank cells, numeric zero and boolean false fall through to the next
// alias. An absent value is returned when no alias matches.
func resolveAlias(row sheet.Row, aliases []string) sheet.Value {
	for _, alias := range aliases {
		if v := row.Get(alias); v.Truthy() {
			return v
		}
	}
	return sheet.Value{}
}
